package domain

import "time"

// Rank mirrors the staff categories used by the sales team.
type Rank int

const (
	RankManager   Rank = 1
	RankValidator Rank = 2
	RankTeamLead  Rank = 3
)

func (r Rank) String() string {
	switch r {
	case RankManager:
		return "Менеджер"
	case RankValidator:
		return "Валидатор"
	case RankTeamLead:
		return "РОП"
	}
	return "неизвестно"
}

// StaffProfile maps a Telegram identity to a CRM name, a locale and a
// notification target. Owned by the administrative flows, consumed by
// reporting and reminders.
type StaffProfile struct {
	UserID       int64
	RealName     string // must match the CRM account name
	Username     string
	Language     string // "ru" or "en"
	Rank         Rank
	LeadUsername string // responsible team lead; leads point at themselves
	GroupID      int64  // chat the user works from, used for notifications
	CreatedAt    time.Time
}

// NotifyTarget returns the chat to message the user in: the work group
// if known, otherwise a direct message.
func (p *StaffProfile) NotifyTarget() int64 {
	if p.GroupID != 0 {
		return p.GroupID
	}
	return p.UserID
}
