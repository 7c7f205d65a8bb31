package services

import (
	"fmt"

	"gramseva-be/models"
)

// statusMessages composes the email subject/body and the shorter SMS text
// announcing a status change to the submitter.
func statusMessages(status models.ProblemStatus, title string) (subject, body, sms string) {
	switch status {
	case models.Resolved:
		subject = "Your reported problem has been resolved"
		body = fmt.Sprintf("We're pleased to inform you that your reported issue %q has been successfully resolved. Thank you for your patience!", title)
		sms = fmt.Sprintf("Your reported issue %q has been resolved. Thank you for your patience!", title)
	case models.InProgress:
		subject = "Your reported problem is being addressed"
		body = fmt.Sprintf("We wanted to let you know that we're currently working on your reported issue %q. We'll update you once it's resolved.", title)
		sms = fmt.Sprintf("We are currently addressing your issue %q. We'll update you once it's resolved.", title)
	case models.Rejected:
		subject = "Update on your reported problem"
		body = fmt.Sprintf("We regret to inform you that we cannot proceed with your reported issue %q at this time. Please contact the village office for more details.", title)
		sms = fmt.Sprintf("Regarding your issue %q: We cannot proceed with this at this time. Please contact the village office for more details.", title)
	default:
		subject = "Your reported problem status has been updated"
		body = fmt.Sprintf("We're reviewing your reported issue %q and will update you soon.", title)
		sms = fmt.Sprintf("Your issue %q has been received and is under review.", title)
	}
	return subject, body, sms
}
