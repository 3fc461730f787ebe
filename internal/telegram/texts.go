package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/derssen/controller-bot/internal/domain"
)

// Worker-facing texts exist in two locales; the admin menu is Russian
// only, matching the team that runs it.
const (
	adminGreeting  = "Привет! Вы можете управлять сотрудниками и выгрузкой."
	noAccessText   = "Привет! У вас нет прав для взаимодействия с этим ботом."
	helpText       = "Справка: используйте кнопки для управления сотрудниками и таблицами.\nСотрудники пишут «старт» и «финиш» в рабочем чате, отчёты помечаются тегом #отчет / #report."
	helpNoAccess   = "У вас нет прав для использования этого бота."
	askUserIDText  = "Перешлите сообщение от пользователя или введите user_id."
	askRankText    = "Выберите категорию пользователя:"
	askNameText    = "Введите имя пользователя. Оно должно соответствовать аккаунту в CRM."
	askLangText    = "Введите язык пользователя (ru / en)."
	badLangText    = "Некорректный язык, введите 'ru' или 'en'."
	askLeadText    = "Выберите ответственного РОПа:"
	askDelNameText = "Введите имя (CRM) пользователя, которого нужно удалить."

	startedRu        = "Продуктивного дня!"
	startedEn        = "Have a productive day!"
	alreadyStartedRu = "Рабочий день уже начат."
	alreadyStartedEn = "Your workday is already started."
	finishedRu       = "Спасибо за работу и приятного отдыха!"
	finishedEn       = "Thank you for your work and have a pleasant rest!"
	notStartedRu     = "Рабочий день ещё не начат — напиши «старт»."
	notStartedEn     = "Your workday is not started yet — send \"start\" first."
	reminderRu       = "Напоминание: не забудь отправить отчёт за сегодня (#отчет)."
	reminderEn       = "Reminder: don't forget to submit today's report (#report)."

	dailyStatsRuFmt = "Ты сегодня проработал %s, закрыл %d лида(ов). Так держать!"
	dailyStatsEnFmt = "Today you worked %s and closed %d lead(s). Keep it up!"
	totalStatsRuFmt = "За всё время ты проработал %s и закрыл %d лида(ов)."
	totalStatsEnFmt = "In total you worked %s and closed %d lead(s)."
)

var (
	phrasesRu = []string{
		"Не сдавайся, даже если кажется, что всё против тебя!",
		"Каждый лид приближает тебя к цели.",
		"Сегодня отличный день, чтобы стать лучше, чем вчера.",
		"Большие результаты складываются из маленьких шагов.",
	}
	phrasesEn = []string{
		"Don't give up, even when everything seems against you!",
		"Every lead brings you closer to the goal.",
		"Today is a great day to be better than yesterday.",
		"Big results are made of small steps.",
	}
)

// startTriggers/stopTriggers: the original team types these as plain
// words in the work chat, not as slash commands.
var (
	startTriggers = map[string]bool{"старт": true, "start": true}
	stopTriggers  = map[string]bool{"финиш": true, "finish": true, "stop": true}
)

// Admin reply-keyboard buttons.
const (
	btnAddUser   = "Добавить пользователя"
	btnDelUser   = "Удалить пользователя"
	btnListStaff = "Перечень сотрудников"
	btnExport    = "Обновить таблицу"
)

func adminMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAddUser),
			tgbotapi.NewKeyboardButton(btnDelUser),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnListStaff),
			tgbotapi.NewKeyboardButton(btnExport),
		),
	)
	kb.ResizeKeyboard = true
	kb.InputFieldPlaceholder = "Выберите действие..."
	return kb
}

func ranksKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Менеджер", "rank:1"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Валидатор", "rank:2"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("РОП", "rank:3"),
		),
	)
}

func leadsKeyboard(leads []domain.StaffProfile) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(leads))
	for _, l := range leads {
		label := l.RealName
		if l.Username != "" {
			label += " (@" + l.Username + ")"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "lead:"+l.Username),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
