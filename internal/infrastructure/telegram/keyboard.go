package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// Подписи кнопок, на которые завязаны обработчики бота
const (
	ButtonYes        = "Yes!"
	ButtonNo         = "No!"
	ButtonGuilty     = "I'm guilty"
	ButtonStatistics = "Statistics"
	ButtonRestart    = "Restart"
	ButtonSuggest    = "Suggest a meme"
	ButtonNotNow     = "Not now"
)

var promptKeyboard = resized(tgbotapi.NewReplyKeyboard(
	tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(ButtonNo)),
	tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(ButtonYes)),
))

var menuKeyboard = resized(tgbotapi.NewReplyKeyboard(
	tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(ButtonStatistics),
		tgbotapi.NewKeyboardButton(ButtonGuilty),
		tgbotapi.NewKeyboardButton(ButtonRestart),
	),
	tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(ButtonSuggest)),
))

var startKeyboard = resized(tgbotapi.NewReplyKeyboard(
	tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(ButtonNotNow)),
))

func resized(kb tgbotapi.ReplyKeyboardMarkup) tgbotapi.ReplyKeyboardMarkup {
	kb.ResizeKeyboard = true
	return kb
}
