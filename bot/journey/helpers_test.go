package journey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInput(t *testing.T) {
	sc := Script{Options: []Option{
		{ID: "zero_dep", Label: "Zero Depreciation"},
		{ID: "rsa", Label: "Roadside Assistance"},
		{ID: "engine", Label: "Engine Protect"},
	}}

	tests := []struct {
		name   string
		widget WidgetType
		text   string
		want   Response
	}{
		{"number picks option", WidgetSelection, "2", Choice{ID: "rsa"}},
		{"label picks option", WidgetSelection, "engine protect", Choice{ID: "engine"}},
		{"id picks option", WidgetSelection, "zero_dep", Choice{ID: "zero_dep"}},
		{"text", WidgetText, "  Asha Rao ", Text{Value: "Asha Rao"}},
		{"rupees", WidgetNumber, "₹5,40,000", Number{Value: 540000}},
		{"addons", WidgetAddOnSelection, "1, 3", AddOnPick{AddOns: []string{"zero_dep", "engine"}}},
		{"no addons", WidgetAddOnSelection, "none", AddOnPick{AddOns: []string{}}},
		{"plan", WidgetPlanSelection, "1 any", PlanPick{Plan: "zero_dep", GarageTier: "any"}},
		{"plan default tier", WidgetPlanSelection, "rsa", PlanPick{Plan: "rsa", GarageTier: "network"}},
		{"upload", WidgetDocumentUpload, "rc.pdf, licence.jpg", Upload{Files: []string{"rc.pdf", "licence.jpg"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInput(tt.widget, sc, tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseInputRejects(t *testing.T) {
	sc := Script{Options: []Option{{ID: "car", Label: "Car"}}}
	for _, tc := range []struct {
		widget WidgetType
		text   string
	}{
		{WidgetSelection, "7"},
		{WidgetNumber, "lots"},
		{WidgetText, "   "},
		{WidgetVehicleFetch, "MH01AB1234"},
		{WidgetAddOnSelection, "car, boat"},
	} {
		_, err := ParseInput(tc.widget, sc, tc.text)
		assert.ErrorIs(t, err, ErrMalformedResponse, "%s %q", tc.widget, tc.text)
	}
}

func TestFormatNumberedOptions(t *testing.T) {
	got := FormatNumberedOptions("Pick one", []Option{{ID: "car", Label: "Car"}, {ID: "bike", Label: "Bike"}})
	assert.Equal(t, "Pick one\n\n1. Car\n2. Bike\n\nReply with a number:", got)
}

func TestPhone(t *testing.T) {
	assert.Equal(t, "+919876543210", NormalizePhone("98765 43210"))
	assert.Equal(t, "+919876543210", NormalizePhone("+91-98765-43210"))
	assert.Equal(t, "+919876543210", NormalizePhone("09876543210"))
	assert.True(t, IsValidPhone("9876543210"))
	assert.False(t, IsValidPhone("12345"))
	assert.False(t, IsValidPhone("5876543210"))
}
