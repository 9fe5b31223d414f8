package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"nofap-bot/config"
	"nofap-bot/internal/container"
	"nofap-bot/internal/domain/entity"
	"nofap-bot/internal/domain/port"
	"nofap-bot/internal/infrastructure/telegram"
	"nofap-bot/internal/schedule"
)

const (
	msgWelcome = `Hi!
I am No Fap Bot!

Options:
/start
/help
/stat
/blacklist
/suggest_meme`

	msgChooseStart     = "Your challenge starts now. Press the button if that's fine."
	msgRelapse         = "Oh no, I'll have to reset your work."
	msgClean           = "Good job, keep up the good work."
	msgRestarted       = "Ok, you nofap challenge begin now."
	msgNicknameNag     = "\n\nYou should set nickname for using our bot"
	msgSuggestAsk      = "Please send your meme to this chat. We will consider it:\n🔽🔽🔽🔽🔽🔽🔽🔽"
	msgSuggestNotMeme  = "This not a meme, btw\nYou can continue to use our bot. \nTo suggest meme you can push button again"
	msgSuggestThanks   = "Good meme! Thanks. You can continue to use our bot. Tell your friends about it!"
	msgSuggestFailed   = "Could not save your meme, try again later."
	msgUnknownCommand  = "❓ Unknown command. Use /help."
	msgBadBanArgs      = "Command args passes incorrectly"
	msgNickNotFound    = "User with provided nickname doesn't exist"
	msgNoAdminRights   = "You don't have admin rights to do /%s"
	msgSummaryBadTime  = "Usage: /set_summary_time HH:MM"
	msgSummaryUpdated  = "Summary time updated to %02d:%02d"
	msgLogsUnavailable = "Log file is not available."
)

// Bot обработчик входящих сообщений и команд
type Bot struct {
	api      *tgbotapi.BotAPI
	store    port.UserStore
	msgr     port.Messenger
	services *container.Container
	sched    *schedule.Scheduler
	cfg      *config.Config
	log      zerolog.Logger
	now      func() time.Time

	mu                sync.Mutex
	pendingSuggestion map[int64]bool
}

// NewBot создаёт бота поверх готового клиента Bot API
func NewBot(
	api *tgbotapi.BotAPI,
	store port.UserStore,
	msgr port.Messenger,
	services *container.Container,
	sched *schedule.Scheduler,
	cfg *config.Config,
	log zerolog.Logger,
) *Bot {
	return &Bot{
		api:               api,
		store:             store,
		msgr:              msgr,
		services:          services,
		sched:             sched,
		cfg:               cfg,
		log:               log,
		now:               time.Now,
		pendingSuggestion: make(map[int64]bool),
	}
}

// Run запускает основной цикл обработки сообщений
func (b *Bot) Run() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	ctx := context.Background()

	for update := range updates {
		switch {
		case update.Message != nil:
			b.handleMessage(ctx, update.Message)
		case update.CallbackQuery != nil:
			b.handleCallback(update.CallbackQuery)
		}
	}

	return nil
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	uid := msg.Chat.ID
	b.log.Debug().Int64("uid", uid).Str("text", msg.Text).Msg("incoming message")

	// забаненный получает только собственную статистику
	if b.store.Contains(uid) {
		stat, err := b.store.GetByID(uid)
		if err == nil && stat.Blocked {
			b.reply(uid, "Your statistics: \n"+b.formatStatLine(0, stat), port.KeyboardRemove)
			return
		}
	}

	if b.takePendingSuggestion(uid) {
		b.handleSuggestedMeme(msg)
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	b.handleText(msg)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	uid := msg.Chat.ID

	switch msg.Command() {
	case "start", "help":
		b.ensureUser(msg)
		b.reply(uid, msgWelcome, port.KeyboardNone)
		b.reply(uid, msgChooseStart, port.KeyboardStart)

	case "stat":
		b.sendStatistics(uid, 0)

	case "blacklist":
		b.reply(uid, b.formatBlackList(), port.KeyboardNone)

	case "ban":
		b.handleBan(msg, true)

	case "unban":
		b.handleBan(msg, false)

	case "suggest_meme":
		b.setPendingSuggestion(uid)
		b.reply(uid, msgSuggestAsk, port.KeyboardNone)

	case "logs":
		b.handleLogs(ctx, msg)

	case "set_summary_time":
		b.handleSetSummaryTime(msg)

	default:
		b.reply(uid, msgUnknownCommand, port.KeyboardNone)
	}
}

// handleText обрабатывает нажатия кнопок меню
func (b *Bot) handleText(msg *tgbotapi.Message) {
	uid := msg.Chat.ID

	switch {
	case strings.EqualFold(msg.Text, telegram.ButtonYes),
		strings.EqualFold(msg.Text, telegram.ButtonGuilty):
		b.handleRelapse(msg)

	case msg.Text == telegram.ButtonNo:
		b.handleCleanDay(msg)

	case msg.Text == telegram.ButtonStatistics:
		b.sendStatistics(uid, 0)

	case msg.Text == telegram.ButtonSuggest:
		b.setPendingSuggestion(uid)
		b.reply(uid, msgSuggestAsk, port.KeyboardNone)

	case strings.EqualFold(msg.Text, telegram.ButtonNotNow):
		b.reply(uid, msgRestarted, port.KeyboardMenu)

	case strings.EqualFold(msg.Text, telegram.ButtonRestart):
		if err := b.store.SetRelapseTime(uid, b.now()); err != nil {
			b.log.Error().Err(err).Int64("uid", uid).Msg("restart failed")
			return
		}
		b.reply(uid, msgRestarted, port.KeyboardMenu)

	default:
		b.reply(uid, msgUnknownCommand, port.KeyboardMenu)
	}
}

// handleRelapse участник признался в срыве: таймер серии сбрасывается
func (b *Bot) handleRelapse(msg *tgbotapi.Message) {
	uid := msg.Chat.ID
	if !b.store.Contains(uid) {
		b.reply(uid, msgWelcome, port.KeyboardNone)
		return
	}

	if err := b.store.SetRelapseTime(uid, b.now()); err != nil {
		b.log.Error().Err(err).Int64("uid", uid).Msg("relapse update failed")
		return
	}
	b.acknowledgeResponse(uid)

	text := msgRelapse
	if msg.Chat.UserName == "" {
		text += msgNicknameNag
	}
	b.reply(uid, text, port.KeyboardMenu)
}

// handleCleanDay участник отчитался, что день прошёл чисто
func (b *Bot) handleCleanDay(msg *tgbotapi.Message) {
	uid := msg.Chat.ID
	if !b.store.Contains(uid) {
		b.reply(uid, msgWelcome, port.KeyboardNone)
		return
	}

	b.acknowledgeResponse(uid)

	text := msgClean
	if msg.Chat.UserName == "" {
		text += msgNicknameNag
	}
	b.reply(uid, text, port.KeyboardMenu)
}

func (b *Bot) acknowledgeResponse(uid int64) {
	eng, err := b.store.Engagement(uid)
	if err != nil {
		b.log.Error().Err(err).Int64("uid", uid).Msg("engagement lookup failed")
		return
	}
	eng.Response()
}

// handleBan бан или разбан по нику, только для админов
func (b *Bot) handleBan(msg *tgbotapi.Message, ban bool) {
	uid := msg.Chat.ID
	if !b.cfg.IsAdmin(uid) {
		b.reply(uid, fmt.Sprintf(msgNoAdminRights, msg.Command()), port.KeyboardNone)
		return
	}

	args := strings.Fields(msg.CommandArguments())
	if len(args) == 0 {
		b.reply(uid, msgBadBanArgs, port.KeyboardNone)
		return
	}
	nick := strings.TrimPrefix(args[0], "@")

	target, err := b.store.FindByUsername(nick)
	if err != nil {
		b.reply(uid, msgNickNotFound, port.KeyboardNone)
		return
	}
	if err := b.store.SetBlocked(target, ban); err != nil {
		b.log.Error().Err(err).Int64("uid", target).Msg("ban update failed")
		return
	}

	action := "banned"
	if !ban {
		action = "unbanned"
	}
	b.log.Info().Int64("admin", uid).Int64("target", target).Str("action", action).Msg("admin ban command")
	b.reply(uid, fmt.Sprintf("User with nick @%s was %s by you :)", nick, action), port.KeyboardNone)
}

// handleLogs отправляет файл лога админу
func (b *Bot) handleLogs(ctx context.Context, msg *tgbotapi.Message) {
	uid := msg.Chat.ID
	if !b.cfg.IsAdmin(uid) {
		b.reply(uid, fmt.Sprintf(msgNoAdminRights, msg.Command()), port.KeyboardNone)
		return
	}

	name := fmt.Sprintf("%s-%d", b.cfg.Storage.LogFile, b.now().Unix())
	if err := b.msgr.SendDocumentFile(ctx, uid, b.cfg.Storage.LogFile, name); err != nil {
		b.log.Error().Err(err).Msg("log file send failed")
		b.reply(uid, msgLogsUnavailable, port.KeyboardNone)
	}
}

// handleSetSummaryTime переносит ежедневную сводку на другое время
func (b *Bot) handleSetSummaryTime(msg *tgbotapi.Message) {
	uid := msg.Chat.ID
	if !b.cfg.IsAdmin(uid) {
		b.reply(uid, fmt.Sprintf(msgNoAdminRights, msg.Command()), port.KeyboardNone)
		return
	}

	hour, minute, ok := parseClock(strings.TrimSpace(msg.CommandArguments()))
	if !ok {
		b.reply(uid, msgSummaryBadTime, port.KeyboardNone)
		return
	}
	if err := b.sched.Reschedule("daily-summary", schedule.DailyAt(hour, minute)); err != nil {
		b.log.Error().Err(err).Msg("summary reschedule failed")
		b.reply(uid, msgSummaryBadTime, port.KeyboardNone)
		return
	}
	b.reply(uid, fmt.Sprintf(msgSummaryUpdated, hour, minute), port.KeyboardNone)
}

func parseClock(s string) (hour, minute int, ok bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// handleSuggestedMeme принимает фото, обещанное после кнопки предложения
func (b *Bot) handleSuggestedMeme(msg *tgbotapi.Message) {
	uid := msg.Chat.ID

	if len(msg.Photo) == 0 {
		b.reply(uid, msgSuggestNotMeme, port.KeyboardMenu)
		return
	}

	photo := msg.Photo[len(msg.Photo)-1]
	data, err := b.downloadFile(photo.FileID)
	if err != nil {
		b.log.Error().Err(err).Int64("uid", uid).Msg("suggestion download failed")
		b.reply(uid, msgSuggestFailed, port.KeyboardMenu)
		return
	}

	if _, err := b.services.Suggestions.Save(uid, data); err != nil {
		b.log.Error().Err(err).Int64("uid", uid).Msg("suggestion save failed")
		b.reply(uid, msgSuggestFailed, port.KeyboardMenu)
		return
	}
	b.reply(uid, msgSuggestThanks, port.KeyboardMenu)
}

// handleCallback листает страницы статистики
func (b *Bot) handleCallback(query *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.log.Error().Err(err).Msg("callback ack failed")
	}

	direction, page, caller, ok := parseStatsCallback(query.Data)
	if !ok || query.Message == nil {
		return
	}

	switch direction {
	case "next":
		page++
	case "back":
		page--
		if page < 0 {
			return
		}
	default:
		return
	}

	text, markup := b.statisticsPage(page, caller)
	edit := tgbotapi.NewEditMessageTextAndMarkup(query.Message.Chat.ID, query.Message.MessageID, text, markup)
	if _, err := b.api.Send(edit); err != nil {
		b.log.Error().Err(err).Msg("statistics edit failed")
	}
}

// sendStatistics отправляет страницу рейтинга со слайдером
func (b *Bot) sendStatistics(uid int64, page int) {
	text, markup := b.statisticsPage(page, uid)
	msg := tgbotapi.NewMessage(uid, text)
	msg.ReplyMarkup = markup
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error().Err(err).Int64("uid", uid).Msg("statistics send failed")
	}
}

func (b *Bot) statisticsPage(page int, caller int64) (string, tgbotapi.InlineKeyboardMarkup) {
	top, callerRank := b.services.Leaderboard.Top(page, caller)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Statistics (%d-%d):\n", page*10+1, (page+1)*10)
	for i, stat := range top {
		sb.WriteString(b.formatStatLine(page*10+i+1, stat))
		sb.WriteByte('\n')
	}
	if callerRank != nil {
		sb.WriteString("...\n")
		sb.WriteString(b.formatStatLine(callerRank.Rank, callerRank.Stat))
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀", statsCallbackData("back", page, caller)),
		tgbotapi.NewInlineKeyboardButtonData("▶", statsCallbackData("next", page, caller)),
	))
	return sb.String(), markup
}

// formatStatLine строка рейтинга; нулевой ранг печатается без позиции
func (b *Bot) formatStatLine(rank int, stat *entity.UserStat) string {
	name := stat.Username
	if name == "" {
		name = fmt.Sprintf("id%d", stat.UID)
	}
	streak := formatStreak(b.now().Sub(stat.LastRelapse))
	if rank == 0 {
		return fmt.Sprintf("@%s Stat: %s", name, streak)
	}
	return fmt.Sprintf("%d. @%s Stat: %s", rank, name, streak)
}

func formatStreak(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
}

func (b *Bot) formatBlackList() string {
	banned := b.store.BlackList()
	lines := make([]string, 0, len(banned)+1)
	lines = append(lines, "BlackList: ")
	for _, u := range banned {
		lines = append(lines, fmt.Sprintf("@%s is blocked", u.Username))
	}
	return strings.Join(lines, "\n")
}

func statsCallbackData(direction string, page int, caller int64) string {
	return fmt.Sprintf("stats:%s:%d:%d", direction, page, caller)
}

func parseStatsCallback(data string) (direction string, page int, caller int64, ok bool) {
	parts := strings.Split(data, ":")
	if len(parts) != 4 || parts[0] != "stats" {
		return "", 0, 0, false
	}
	page, err1 := strconv.Atoi(parts[2])
	caller, err2 := strconv.ParseInt(parts[3], 10, 64)
	if err1 != nil || err2 != nil {
		return "", 0, 0, false
	}
	return parts[1], page, caller, true
}

// ensureUser заводит запись при первом обращении
func (b *Bot) ensureUser(msg *tgbotapi.Message) {
	uid := msg.Chat.ID
	if b.store.Contains(uid) {
		return
	}
	if _, err := b.store.AddNewUser(uid, msg.Chat.UserName, b.now()); err != nil {
		b.log.Error().Err(err).Int64("uid", uid).Msg("new user registration failed")
		return
	}
	b.log.Info().Int64("uid", uid).Str("username", msg.Chat.UserName).Msg("new user registered")
}

func (b *Bot) setPendingSuggestion(uid int64) {
	b.mu.Lock()
	b.pendingSuggestion[uid] = true
	b.mu.Unlock()
}

func (b *Bot) takePendingSuggestion(uid int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.pendingSuggestion[uid] {
		return false
	}
	delete(b.pendingSuggestion, uid)
	return true
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	resp, err := http.Get(file.Link(b.api.Token))
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

// reply отправляет ответ через общий канал доставки
func (b *Bot) reply(uid int64, text string, kb port.Keyboard) {
	if err := b.msgr.SendText(context.Background(), uid, text, kb); err != nil {
		b.log.Error().Err(err).Int64("uid", uid).Msg("reply failed")
	}
}
