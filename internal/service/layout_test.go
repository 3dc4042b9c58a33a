package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/seathive/seathive-server/internal/model"
)

func TestValidateLayout(t *testing.T) {
	valid := model.Layout{
		Disabled:   []model.Seat{{Row: 0, Col: 0}},
		Wheelchair: []model.Seat{{Row: 0, Col: 1}},
		Tiers: []model.Tier{
			{Name: "VIP", SurchargeCents: 500, Seats: []model.Seat{{Row: 4, Col: 4}}},
			{Name: "Front", SurchargeCents: 0, Seats: []model.Seat{{Row: 1, Col: 0}}},
		},
	}
	assert.NoError(t, ValidateLayout(valid, 5, 5))
	assert.NoError(t, ValidateLayout(model.Layout{}, 1, 1), "empty layout on smallest grid")

	cases := []struct {
		name   string
		layout model.Layout
		rows   int
		cols   int
	}{
		{"zero rows", model.Layout{}, 0, 5},
		{"zero cols", model.Layout{}, 5, 0},
		{"disabled out of bounds", model.Layout{Disabled: []model.Seat{{Row: 5, Col: 0}}}, 5, 5},
		{"disabled negative", model.Layout{Disabled: []model.Seat{{Row: -1, Col: 0}}}, 5, 5},
		{"wheelchair out of bounds", model.Layout{Wheelchair: []model.Seat{{Row: 0, Col: 5}}}, 5, 5},
		{"empty tier name", model.Layout{Tiers: []model.Tier{{Name: "", Seats: []model.Seat{{Row: 0, Col: 0}}}}}, 5, 5},
		{"negative surcharge", model.Layout{Tiers: []model.Tier{{Name: "VIP", SurchargeCents: -1}}}, 5, 5},
		{"tier seat out of bounds", model.Layout{Tiers: []model.Tier{{Name: "VIP", Seats: []model.Seat{{Row: 9, Col: 9}}}}}, 5, 5},
		{
			"tier prices disabled seat",
			model.Layout{
				Disabled: []model.Seat{{Row: 2, Col: 2}},
				Tiers:    []model.Tier{{Name: "VIP", Seats: []model.Seat{{Row: 2, Col: 2}}}},
			}, 5, 5,
		},
		{
			"overlapping tiers",
			model.Layout{Tiers: []model.Tier{
				{Name: "VIP", Seats: []model.Seat{{Row: 1, Col: 1}}},
				{Name: "Gold", Seats: []model.Seat{{Row: 1, Col: 1}}},
			}}, 5, 5,
		},
		{
			"duplicate seat inside one tier",
			model.Layout{Tiers: []model.Tier{
				{Name: "VIP", Seats: []model.Seat{{Row: 1, Col: 1}, {Row: 1, Col: 1}}},
			}}, 5, 5,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateLayout(tc.layout, tc.rows, tc.cols)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}
