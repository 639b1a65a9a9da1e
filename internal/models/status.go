package models

// Status is the review state of a homework.
type Status string

const (
	StatusApproved  Status = "approved"
	StatusReviewing Status = "reviewing"
	StatusRejected  Status = "rejected"
)

var verdicts = map[Status]string{
	StatusApproved:  "Работа проверена: ревьюеру всё понравилось. Ура!",
	StatusReviewing: "Работа взята на проверку ревьюером.",
	StatusRejected:  "Работа проверена: у ревьюера есть замечания.",
}

// Verdict returns the chat text for s. ok is false for statuses the API
// does not document.
func (s Status) Verdict() (verdict string, ok bool) {
	verdict, ok = verdicts[s]
	return verdict, ok
}

// Known reports whether s has a verdict.
func (s Status) Known() bool {
	_, ok := verdicts[s]
	return ok
}
