package entity

const (
	PlanThirdParty        = "third_party"
	PlanComprehensive     = "comprehensive"
	PlanComprehensivePlus = "comprehensive_plus"

	GarageNetwork = "network"
	GarageAny     = "any"

	AddOnOutOfPocket     = "out_of_pocket"
	AddOnProtectEveryone = "protect_everyone"
)

type Premium struct {
	OwnDamage     int `json:"own_damage" bson:"own_damage"`
	ThirdParty    int `json:"third_party" bson:"third_party"`
	AddOns        int `json:"add_ons" bson:"add_ons"`
	NcbDiscount   int `json:"ncb_discount" bson:"ncb_discount"`
	GarageLoading int `json:"garage_loading" bson:"garage_loading"`
	Net           int `json:"net" bson:"net"`
	GST           int `json:"gst" bson:"gst"`
	Total         int `json:"total" bson:"total"`
}

type Plan struct {
	ID       string   `json:"id" bson:"id" validate:"required"`
	Type     string   `json:"type" bson:"type" validate:"required,oneof=third_party comprehensive comprehensive_plus"`
	Name     string   `json:"name" bson:"name"`
	IDV      int      `json:"idv" bson:"idv"`
	Premium  Premium  `json:"premium" bson:"premium"`
	Features []string `json:"features" bson:"features"`
}

type AddOn struct {
	ID          string `json:"id" bson:"id"`
	Name        string `json:"name" bson:"name"`
	Description string `json:"description" bson:"description"`
	Category    string `json:"category" bson:"category"`
	Price       int    `json:"price" bson:"price"`
}
