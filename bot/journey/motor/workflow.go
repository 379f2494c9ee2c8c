// Package motor is the primary step registry of the motor insurance journey:
// vehicle details, previous policy, quotes, add-ons, owner details and payment.
package motor

import (
	"time"

	"CoverBot/bot/journey"
	"CoverBot/entity"
)

const Product = "motor"

// Modules in progress bar order.
const (
	ModuleIntro   journey.Module = "intro"
	ModuleVehicle journey.Module = "vehicle"
	ModulePolicy  journey.Module = "policy"
	ModuleQuote   journey.Module = "quote"
	ModuleAddOns  journey.Module = "addons"
	ModuleOwner   journey.Module = "owner"
	ModulePayment journey.Module = "payment"
	ModuleSupport journey.Module = "support"
)

// Step IDs
const (
	StepWelcome      journey.StepID = "intro.welcome"
	StepName         journey.StepID = "intro.name"
	StepPhone        journey.StepID = "intro.phone"
	StepPhoneInvalid journey.StepID = "intro.phone_invalid"

	StepVehicleType         journey.StepID = "vehicle.type"
	StepBrandNew            journey.StepID = "vehicle.brand_new"
	StepRegistration        journey.StepID = "vehicle.registration"
	StepRegistrationInvalid journey.StepID = "vehicle.registration_invalid"
	StepFetching            journey.StepID = "vehicle.fetching"
	StepFetchFailed         journey.StepID = "vehicle.fetch_failed"
	StepConfirmVehicle      journey.StepID = "vehicle.confirm"
	StepManualBrand         journey.StepID = "vehicle.manual_brand"
	StepManualModel         journey.StepID = "vehicle.manual_model"
	StepManualYear          journey.StepID = "vehicle.manual_year"
	StepCngKit              journey.StepID = "vehicle.cng_kit"
	StepCommercialCheck     journey.StepID = "vehicle.commercial_check"
	StepCommercialRejected  journey.StepID = "vehicle.commercial_rejected"

	StepPolicyStatus  journey.StepID = "policy.status"
	StepPolicyExpired journey.StepID = "policy.expired_notice"
	StepInsurer       journey.StepID = "policy.insurer"
	StepPolicyType    journey.StepID = "policy.type"
	StepClaimMade     journey.StepID = "policy.claim"
	StepClaimNotice   journey.StepID = "policy.claim_notice"
	StepNcbCurrent    journey.StepID = "policy.ncb_current"
	StepNcbConfirm    journey.StepID = "policy.ncb_confirm"
	StepNcbReward     journey.StepID = "policy.ncb_reward"
	StepPolicySummary journey.StepID = "policy.summary"

	StepCalculating  journey.StepID = "quote.calculating"
	StepPlans        journey.StepID = "quote.plans"
	StepPlanSelected journey.StepID = "quote.plan_selected"
	StepIDVAdjust    journey.StepID = "quote.idv_adjust"
	StepReview       journey.StepID = "quote.review"

	StepOutOfPocket     journey.StepID = "addons.out_of_pocket"
	StepProtectEveryone journey.StepID = "addons.protect_everyone"

	StepOwnerName       journey.StepID = "owner.full_name"
	StepEmail           journey.StepID = "owner.email"
	StepEmailInvalid    journey.StepID = "owner.email_invalid"
	StepNomineeName     journey.StepID = "owner.nominee_name"
	StepNomineeRelation journey.StepID = "owner.nominee_relation"
	StepAddress         journey.StepID = "owner.address"

	StepPaymentSummary    journey.StepID = "payment.summary"
	StepPaymentProcessing journey.StepID = "payment.processing"
	StepPaymentFailed     journey.StepID = "payment.failed"
	StepPaymentSuccess    journey.StepID = "payment.success"

	StepExpert   journey.StepID = "support.expert"
	StepFallback journey.StepID = "support.fallback"

	// StepDashboard is the entry point of the servicing registry.
	StepDashboard journey.StepID = "db.welcome"
)

// State data keys
const (
	KeyUserName        = "userName"
	KeyPhone           = "phone"
	KeyVehicleType     = "vehicleType"
	KeyIsBrandNew      = "isBrandNew"
	KeyRegistration    = "registrationNumber"
	KeyVehicleFetched  = "vehicleFetched"
	KeyVehicle         = "vehicle"
	KeyManualBrand     = "manualBrand"
	KeyHasCngKit       = "hasCngKit"
	KeyUsage           = "vehicleUsage"
	KeyPreviousPolicy  = "previousPolicy"
	KeyNewNcb          = "newNcbPercentage"
	KeyNcbIncreased    = "ncbIncreased"
	KeyQuotes          = "quotes"
	KeySelectedPlanID  = "selectedPlanId"
	KeySelectedPlan    = "selectedPlanType"
	KeyGarageTier      = "garageTier"
	KeyIDV             = "idv"
	KeySelectedAddOns  = "selectedAddOns"
	KeyPremium         = "premium"
	KeyOwnerName       = "ownerName"
	KeyEmail           = "email"
	KeyNomineeName     = "nomineeName"
	KeyNomineeRelation = "nomineeRelation"
	KeyAddress         = "address"
	KeyPaymentRef      = "paymentReference"
	KeyPaymentAttempts = "paymentAttempts"
	KeyPolicyNumber    = "policyNumber"
	KeyPolicyIssuedAt  = "policyIssuedAt"
)

const (
	loaderDelay     = 2500 * time.Millisecond
	calculatorDelay = 3 * time.Second
	paymentDelay    = 3 * time.Second
)

// Modules returns the progress bar order of the journey.
func Modules() []journey.Module {
	return []journey.Module{
		ModuleIntro, ModuleVehicle, ModulePolicy, ModuleQuote,
		ModuleAddOns, ModuleOwner, ModulePayment,
	}
}

// InitialData is the state a fresh motor journey starts with.
func InitialData() journey.Patch {
	return journey.Patch{
		KeyUserName:        "",
		KeyPhone:           "",
		KeyVehicleType:     "",
		KeyIsBrandNew:      false,
		KeyRegistration:    "",
		KeyVehicleFetched:  false,
		KeyVehicle:         entity.Vehicle{},
		KeyManualBrand:     "",
		KeyHasCngKit:       false,
		KeyUsage:           "",
		KeyPreviousPolicy:  entity.PreviousPolicy{},
		KeyNewNcb:          0,
		KeyNcbIncreased:    false,
		KeyQuotes:          []entity.Plan{},
		KeySelectedPlanID:  "",
		KeySelectedPlan:    "",
		KeyGarageTier:      entity.GarageNetwork,
		KeyIDV:             0,
		KeySelectedAddOns:  []string{},
		KeyPremium:         entity.Premium{},
		KeyOwnerName:       "",
		KeyEmail:           "",
		KeyNomineeName:     "",
		KeyNomineeRelation: "",
		KeyAddress:         "",
		KeyPaymentRef:      "",
		KeyPaymentAttempts: 0,
		KeyPolicyNumber:    "",
		KeyPolicyIssuedAt:  time.Time{},
	}
}

// Registry builds the motor step registry.
func Registry() *journey.Registry {
	steps := []journey.Step{}
	steps = append(steps, introSteps()...)
	steps = append(steps, vehicleSteps()...)
	steps = append(steps, policySteps()...)
	steps = append(steps, quoteSteps()...)
	steps = append(steps, addOnSteps()...)
	steps = append(steps, ownerSteps()...)
	steps = append(steps, paymentSteps()...)
	steps = append(steps, supportSteps()...)
	return journey.NewRegistry(Product, StepWelcome, steps...)
}
