package telegram

// UI texts in English
const (
	helpText = "🐄 I keep the ranch ledger.\n\n" +
		"Post your gathers in the ranch channel and I will track them.\n\n" +
		"/totals [7d|30d|all] — egg/milk totals\n" +
		"/leaderboard [n] — top gatherers\n" +
		"/weekly — this week's per-player breakdown\n" +
		"/schedule — when the weekly report fires\n" +
		"/subscribe — get the weekly report here\n" +
		"/unsubscribe — stop getting it\n\n" +
		"Admins: /setschedule <weekday> <HH:MM>, /runweekly, /resetweek"

	totalsFmt        = "🧺 Totals (%s):\n• Eggs: %d\n• Milk: %d"
	leaderboardTitle = "🏆 Leaderboard:"
	weeklyTitle      = "📅 This week:"
	emptyLedgerText  = "The ledger is empty."
	emptyWeekText    = "Nothing gathered this week yet."

	subscribedText   = "Subscribed ✅ The weekly report will be delivered here."
	unsubscribedText = "Unsubscribed."

	setScheduleUsage = "Usage: /setschedule <weekday> <HH:MM>, e.g. /setschedule sunday 18:30"
	scheduleSetFmt   = "Weekly report scheduled: %s"
	scheduleFmt      = "Weekly report fires at %s (%s)."
	noScheduleText   = "No weekly report is scheduled. Admins can set one with /setschedule."
	resetDoneFmt     = "Week reset: %d events removed."
	weeklyRanText    = "Weekly report delivered."

	badWindowText        = "Invalid window. Examples: 7d, 24h, all."
	badLimitText         = "Invalid limit. Example: /leaderboard 10"
	permissionDeniedText = "You are not allowed to do that."
	genericFailureText   = "Something went wrong. Please try again later."
)

// windowLabel echoes the requested window back in replies.
func windowLabel(arg string) string {
	if arg == "" {
		return "all time"
	}
	return arg
}
