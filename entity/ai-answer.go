package entity

type AiAnswer struct {
	Text     string `json:"text" bson:"text"`
	Module   string `json:"module" bson:"module"`
	Escalate bool   `json:"escalate" bson:"escalate"`
}
