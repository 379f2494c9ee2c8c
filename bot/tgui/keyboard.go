package tgui

import (
	"strings"
	"unicode/utf8"

	"CoverBot/bot/journey"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
)

// CallbackPrefix marks callbacks produced by journey keyboards.
const CallbackPrefix = "jr:"

const (
	// Telegram rejects callback data longer than this.
	maxCallbackData = 64
	// Labels up to this length fit two to a row on a phone screen.
	shortLabel = 18
)

// CallbackData encodes the step a button belongs to with the option it picks,
// so a press on an old message can be told apart from an answer to the current step.
func CallbackData(step journey.StepID, option string) string {
	return CallbackPrefix + string(step) + ":" + option
}

// ParseCallbackData is the inverse of CallbackData.
func ParseCallbackData(data string) (journey.StepID, string, bool) {
	rest, ok := strings.CutPrefix(data, CallbackPrefix)
	if !ok {
		return "", "", false
	}
	i := strings.LastIndex(rest, ":")
	if i <= 0 || i == len(rest)-1 {
		return "", "", false
	}
	return journey.StepID(rest[:i]), rest[i+1:], true
}

// OptionsKeyboard creates an inline keyboard for a selection step.
// Short option lists and long labels get a row each; otherwise two per row.
// Options whose callback data would not fit are left out.
func OptionsKeyboard(step journey.StepID, options []journey.Option) tgbotapi.InlineKeyboardMarkup {
	columns := 1
	if len(options) > 3 && shortLabels(options) {
		columns = 2
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, (len(options)+columns-1)/columns)
	var row []tgbotapi.InlineKeyboardButton
	for _, o := range options {
		data := CallbackData(step, o.ID)
		if len(data) > maxCallbackData {
			continue
		}
		row = append(row, tgbotapi.InlineKeyboardButton{Text: o.Label, CallbackData: data})
		if len(row) == columns {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func shortLabels(options []journey.Option) bool {
	for _, o := range options {
		if utf8.RuneCountInString(o.Label) > shortLabel {
			return false
		}
	}
	return true
}

// ContactRequestKeyboard creates a reply keyboard with a contact request button.
func ContactRequestKeyboard(buttonText string) tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.ReplyKeyboardMarkup{
		Keyboard: [][]tgbotapi.KeyboardButton{
			{
				{Text: buttonText, RequestContact: true},
			},
		},
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}
}

// RemoveKeyboard creates a remove keyboard markup to hide custom keyboards.
func RemoveKeyboard() tgbotapi.ReplyKeyboardRemove {
	return tgbotapi.ReplyKeyboardRemove{
		RemoveKeyboard: true,
	}
}
