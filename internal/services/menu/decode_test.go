package menu

import (
	"reflect"
	"testing"

	"cafeteria/internal/models"
)

func TestDecodeSchedule_Shapes(t *testing.T) {
	want := []models.ScheduleEntry{
		{DayOfWeek: 0, DishIDs: []int{1, 2}},
		{DayOfWeek: 3, DishIDs: []int{4}},
	}

	tests := []struct {
		name string
		raw  string
	}{
		{"row per dish", `[{"id":10,"day_of_week":0,"dish_id":1,"week_start_date":"2024-06-03"},{"day_of_week":3,"dish_id":4},{"day_of_week":0,"dish_id":2}]`},
		{"row per day", `[{"day_of_week":3,"dish_ids":[4]},{"day_of_week":0,"dish_ids":[1,2]}]`},
		{"wrapped rows", `{"schedule":[{"day_of_week":0,"dish_ids":[1,2]},{"day_of_week":3,"dish_ids":[4]}],"week_start_date":"2024-06-03"}`},
		{"keyed by day", `{"3":[4],"0":[1,2]}`},
		{"duplicates merged", `[{"day_of_week":0,"dish_ids":[1]},{"day_of_week":0,"dish_ids":[2,1]},{"day_of_week":3,"dish_id":4}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws, err := DecodeSchedule([]byte(tt.raw))
			if err != nil {
				t.Fatalf("DecodeSchedule: %v", err)
			}
			if got := ws.Entries(); !reflect.DeepEqual(got, want) {
				t.Fatalf("entries = %+v, want %+v", got, want)
			}
		})
	}
}

func TestDecodeSchedule_Empty(t *testing.T) {
	for _, raw := range []string{``, `null`, `[]`, `{}`, `{"schedule":null}`, `{"schedule":[]}`} {
		ws, err := DecodeSchedule([]byte(raw))
		if err != nil {
			t.Errorf("DecodeSchedule(%q): %v", raw, err)
			continue
		}
		if !ws.Empty() {
			t.Errorf("DecodeSchedule(%q) = %+v, want empty", raw, ws.Entries())
		}
	}
}

func TestDecodeSchedule_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"scalar", `42`},
		{"missing day", `[{"dish_id":1}]`},
		{"missing dishes", `[{"day_of_week":1}]`},
		{"day out of range", `[{"day_of_week":9,"dish_id":1}]`},
		{"bad key", `{"monday":[1]}`},
		{"schedule not a list", `{"schedule":{"0":[1]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeSchedule([]byte(tt.raw)); err == nil {
				t.Fatalf("DecodeSchedule(%s) succeeded", tt.raw)
			}
		})
	}
}

func TestDecodeCatalog(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{"array", `[{"id":1,"name":"Soup","price_rub":80},{"id":2,"name":"Tea","price_rub":20}]`, 2, false},
		{"wrapped", `{"items":[{"id":1,"name":"Soup","price_rub":80}]}`, 1, false},
		{"null", `null`, 0, false},
		{"negative price", `[{"id":1,"price_rub":-1}]`, 0, true},
		{"string", `"menu"`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := DecodeCatalog([]byte(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeCatalog error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && len(c) != tt.want {
				t.Fatalf("len = %d, want %d", len(c), tt.want)
			}
		})
	}
}
