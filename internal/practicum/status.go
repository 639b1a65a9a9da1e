package practicum

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/erkineren/homework-monitor/internal/errors"
	"github.com/erkineren/homework-monitor/internal/models"
)

const statusTemplate = `Changed review status for "%s". %s`

// ParseStatus turns a homework record into the chat message announcing its
// new review status.
func ParseStatus(record any) (string, error) {
	hw, err := DecodeHomework(record)
	if err != nil {
		return "", err
	}
	return FormatStatus(hw)
}

// DecodeHomework validates a raw record and converts it to a Homework.
func DecodeHomework(record any) (models.Homework, error) {
	fields, ok := record.(map[string]any)
	if !ok {
		return models.Homework{}, apperrors.NewNoExpectedAnswerError(fmt.Sprintf("homework record is %s", describe(record)))
	}

	var hw models.Homework
	switch name := fields["homework_name"].(type) {
	case nil:
		return models.Homework{}, apperrors.NewMissingNameError()
	case string:
		hw.Name = name
	default:
		hw.Name = fmt.Sprint(name)
	}

	status, ok := fields["status"].(string)
	if !ok {
		return models.Homework{}, apperrors.NewUndocumentedStatusError(fmt.Sprint(fields["status"]))
	}
	hw.Status = models.Status(status)
	if !hw.Status.Known() {
		return models.Homework{}, apperrors.NewUndocumentedStatusError(status)
	}

	if id, ok := fields["id"].(json.Number); ok {
		hw.ID, _ = id.Int64()
	}
	hw.ReviewerComment, _ = fields["reviewer_comment"].(string)
	hw.LessonName, _ = fields["lesson_name"].(string)
	hw.DateUpdated, _ = fields["date_updated"].(string)

	return hw, nil
}

// FormatStatus renders the chat message for hw.
func FormatStatus(hw models.Homework) (string, error) {
	verdict, ok := hw.Status.Verdict()
	if !ok {
		return "", apperrors.NewUndocumentedStatusError(string(hw.Status))
	}
	return fmt.Sprintf(statusTemplate, hw.Name, verdict), nil
}
