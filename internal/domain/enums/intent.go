package enums

// Intent is what the bot expects from an actor's next message. It replaces
// the framework FSM of the previous implementation with an explicit
// per-actor session record.
type Intent string

const (
	IntentNone               Intent = ""
	IntentAwaitFreePost      Intent = "await_free_post"
	IntentAwaitPayment       Intent = "await_payment"
	IntentAwaitPaidPost      Intent = "await_paid_post"
	IntentAwaitRejectNote    Intent = "await_reject_note"
	IntentAwaitEditedPost    Intent = "await_edited_post"
	IntentAwaitModeratorID   Intent = "await_moderator_id"
	IntentAwaitModeratorName Intent = "await_moderator_name"
)
