package documents

import (
	"testing"
	"time"

	"CoverBot/bot/journey"
	"CoverBot/bot/journey/motor"
	"CoverBot/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func purchased() *journey.State {
	return journey.NewState("motor", "j-1", "db.welcome", journey.Patch{
		motor.KeyPolicyNumber:    "MOT-20260115-A1B2C3",
		motor.KeyPolicyIssuedAt:  time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC),
		motor.KeyOwnerName:       "Asha Rao",
		motor.KeyVehicle:         entity.Vehicle{Registration: "MH12AB1234", Brand: "Maruti", Model: "Swift"},
		motor.KeySelectedPlan:    entity.PlanComprehensive,
		motor.KeyIDV:             520000,
		motor.KeyNomineeName:     "Ravi Rao",
		motor.KeyNomineeRelation: "spouse",
		motor.KeyPaymentRef:      "pay_00a1b2c3",
		motor.KeyPremium:         entity.Premium{Net: 10000, GST: 1800, Total: 11800},
	})
}

func TestRenderSchedule(t *testing.T) {
	doc, err := Render("policy_schedule", purchased())
	require.NoError(t, err)

	body := string(doc.Body)
	assert.Equal(t, "MOT-20260115-A1B2C3-policy_schedule.txt", doc.Filename)
	assert.Contains(t, body, "MOT-20260115-A1B2C3")
	assert.Contains(t, body, "Maruti Swift")
	assert.Contains(t, body, "Ravi Rao (spouse)")
	assert.Contains(t, body, "14 Jan 2027")
}

func TestRenderReceipt(t *testing.T) {
	doc, err := Render("receipt", purchased())
	require.NoError(t, err)
	assert.Contains(t, string(doc.Body), "pay_00a1b2c3")
}

func TestRenderErrors(t *testing.T) {
	_, err := Render("passport", purchased())
	assert.ErrorIs(t, err, ErrUnknownDocument)

	_, err = Render("receipt", journey.NewState("motor", "j-2", "intro", nil))
	assert.ErrorIs(t, err, ErrNoPolicy)
}
