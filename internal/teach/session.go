package teach

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/juanfec/moneytap/internal/common"
	"github.com/juanfec/moneytap/internal/model"
)

// State is one step of the teaching session.
type State string

// Session states.
const (
	StateSelectSMS            State = "SELECT_SMS"
	StateSelectAmount         State = "SELECT_AMOUNT"
	StateSelectMerchant       State = "SELECT_MERCHANT"
	StateSelectOptionalFields State = "SELECT_OPTIONAL_FIELDS"
	StateAddMoreExamples      State = "ADD_MORE_EXAMPLES"
	StateReviewPattern        State = "REVIEW_PATTERN"
	StateSetCategory          State = "SET_CATEGORY"
	StateDone                 State = "DONE"
)

// Session collects labeled examples for one unknown bank and, once at least
// two exist, infers a reusable extraction pattern from them. The UI drives
// the transitions; the session enforces the preconditions. A rejected
// transition returns an error and leaves the state unchanged.
type Session struct {
	state      State
	bankName   string
	senderID   string
	body       string
	selections []model.FieldSelection
	examples   []model.TeachingExample
	pattern    model.InferredPattern
	category   model.Category
}

// NewSession starts a teaching session for the named bank.
func NewSession(bankName string) *Session {
	return &Session{
		state:    StateSelectSMS,
		bankName: bankName,
	}
}

// State returns the current session state.
func (s *Session) State() State { return s.state }

// Examples returns the confirmed examples so far.
func (s *Session) Examples() []model.TeachingExample {
	out := make([]model.TeachingExample, len(s.examples))
	copy(out, s.examples)
	return out
}

// Pattern returns the inferred pattern; valid only after RequestReview
// succeeded.
func (s *Session) Pattern() model.InferredPattern { return s.pattern }

// CurrentBody returns the message body currently being labeled.
func (s *Session) CurrentBody() string { return s.body }

// SelectMessage supplies the message to label, from the initial state or
// when looping back for another example.
func (s *Session) SelectMessage(senderID, body string) error {
	if s.state != StateSelectSMS && s.state != StateAddMoreExamples {
		return s.wrongState("select a message")
	}
	if body == "" {
		return common.NewUserError("the message body is empty", common.ErrInvalidSelection)
	}
	s.senderID = senderID
	s.body = body
	s.selections = nil
	s.state = StateSelectAmount
	return nil
}

// SelectAmount tags the amount span of the current message.
func (s *Session) SelectAmount(start, end int) error {
	if s.state != StateSelectAmount {
		return s.wrongState("select the amount")
	}
	if err := s.addSelection(model.FieldAmount, start, end); err != nil {
		return err
	}
	s.state = StateSelectMerchant
	return nil
}

// SkipAmount moves on without tagging an amount.
func (s *Session) SkipAmount() error {
	if s.state != StateSelectAmount {
		return s.wrongState("skip the amount")
	}
	s.state = StateSelectMerchant
	return nil
}

// SelectMerchant tags the merchant span of the current message.
func (s *Session) SelectMerchant(start, end int) error {
	if s.state != StateSelectMerchant {
		return s.wrongState("select the merchant")
	}
	if err := s.addSelection(model.FieldMerchant, start, end); err != nil {
		return err
	}
	s.state = StateSelectOptionalFields
	return nil
}

// SkipMerchant moves on without tagging a merchant.
func (s *Session) SkipMerchant() error {
	if s.state != StateSelectMerchant {
		return s.wrongState("skip the merchant")
	}
	s.state = StateSelectOptionalFields
	return nil
}

// AddOptionalField tags an additional span (balance, card, date, type).
func (s *Session) AddOptionalField(field model.FieldType, start, end int) error {
	if s.state != StateSelectOptionalFields {
		return s.wrongState("add an optional field")
	}
	return s.addSelection(field, start, end)
}

// ConfirmExample finishes labeling the current message. An example with no
// selections at all is rejected and the state is unchanged.
func (s *Session) ConfirmExample() error {
	if s.state != StateSelectOptionalFields {
		return s.wrongState("confirm the example")
	}
	if len(s.selections) == 0 {
		return common.NewUserError("select at least one field before confirming", common.ErrInvalidSelection)
	}

	s.examples = append(s.examples, model.TeachingExample{
		ID:         uuid.NewString(),
		SenderID:   s.senderID,
		Body:       s.body,
		Selections: s.selections,
		CreatedAt:  time.Now(),
	})
	s.body = ""
	s.selections = nil
	s.state = StateAddMoreExamples
	return nil
}

// RequestReview runs inference over the confirmed examples. It is only
// permitted once two or more examples exist; otherwise the session stays in
// its current state and reports why.
func (s *Session) RequestReview() error {
	if s.state != StateAddMoreExamples {
		return s.wrongState("review the pattern")
	}
	if len(s.examples) < 2 {
		return common.NewUserError(
			fmt.Sprintf("need at least 2 examples to infer a pattern, have %d", len(s.examples)),
			common.ErrTooFewExamples)
	}

	pattern, err := InferPattern(s.examples)
	if err != nil {
		return err
	}
	s.pattern = pattern
	s.state = StateReviewPattern
	return nil
}

// ApprovePattern accepts the inferred pattern and moves to category
// selection.
func (s *Session) ApprovePattern() error {
	if s.state != StateReviewPattern {
		return s.wrongState("approve the pattern")
	}
	s.state = StateSetCategory
	return nil
}

// SetCategory records an optional default category and completes the
// session.
func (s *Session) SetCategory(category model.Category) error {
	if s.state != StateSetCategory {
		return s.wrongState("set the category")
	}
	if category != "" && !category.Valid() {
		return common.NewUserError(fmt.Sprintf("unknown category %q", category), common.ErrInvalidConfig)
	}
	s.category = category
	s.state = StateDone
	return nil
}

// Finish builds the learned pattern from a completed session.
func (s *Session) Finish() (*model.LearnedBankPattern, error) {
	if s.state != StateDone {
		return nil, s.wrongState("finish the session")
	}

	now := time.Now()
	return &model.LearnedBankPattern{
		ID:              uuid.NewString(),
		BankName:        s.bankName,
		SenderIDs:       senderIDs(s.examples),
		Examples:        s.Examples(),
		Pattern:         s.pattern,
		DefaultCategory: s.category,
		Enabled:         true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (s *Session) addSelection(field model.FieldType, start, end int) error {
	sel := model.FieldSelection{Field: field, StartIndex: start, EndIndex: end}
	if err := sel.Validate(s.body); err != nil {
		return common.NewUserError("that selection is not inside the message", err)
	}
	s.selections = append(s.selections, sel)
	return nil
}

func (s *Session) wrongState(action string) error {
	return common.NewUserError(
		fmt.Sprintf("cannot %s while in state %s", action, s.state),
		common.ErrInvalidSelection)
}

// senderIDs returns the distinct sender ids of the examples, in first-seen
// order.
func senderIDs(examples []model.TeachingExample) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, ex := range examples {
		if _, ok := seen[ex.SenderID]; ok {
			continue
		}
		seen[ex.SenderID] = struct{}{}
		out = append(out, ex.SenderID)
	}
	return out
}
