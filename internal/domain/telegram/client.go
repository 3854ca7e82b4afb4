package telegram

// AdminNotifier delivers operational alerts (failed sweeps, undelivered
// notifications) to the admin chat. It is separate from the participant
// notification sink, which only writes documents.
type AdminNotifier interface {
	NotifyAdmin(text string) error
}
