package teach

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juanfec/moneytap/internal/common"
	"github.com/juanfec/moneytap/internal/model"
)

func TestSessionFullFlow(t *testing.T) {
	session := NewSession("Lulo")
	require.Equal(t, StateSelectSMS, session.State())

	// First example.
	require.NoError(t, session.SelectMessage("891234", "Compra por $45.000 en TIENDA D1."))
	require.Equal(t, StateSelectAmount, session.State())
	require.NoError(t, session.SelectAmount(12, 18))
	require.NoError(t, session.SelectMerchant(22, 31))
	require.NoError(t, session.ConfirmExample())
	require.Equal(t, StateAddMoreExamples, session.State())

	// One example is not enough for a review.
	err := session.RequestReview()
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrTooFewExamples)
	assert.Equal(t, StateAddMoreExamples, session.State())

	// Second example, then review.
	require.NoError(t, session.SelectMessage("Lulo Bank", "Compra por $1.250.000 en EXITO POBLADO."))
	require.NoError(t, session.SelectAmount(12, 21))
	require.NoError(t, session.SelectMerchant(25, 38))
	require.NoError(t, session.ConfirmExample())
	require.NoError(t, session.RequestReview())
	require.Equal(t, StateReviewPattern, session.State())
	require.NoError(t, session.Pattern().Validate())

	require.NoError(t, session.ApprovePattern())
	require.Equal(t, StateSetCategory, session.State())
	require.NoError(t, session.SetCategory(model.CategoryGroceries))
	require.Equal(t, StateDone, session.State())

	pattern, err := session.Finish()
	require.NoError(t, err)
	assert.NotEmpty(t, pattern.ID)
	assert.Equal(t, "Lulo", pattern.BankName)
	assert.Equal(t, []string{"891234", "Lulo Bank"}, pattern.SenderIDs)
	assert.Len(t, pattern.Examples, 2)
	assert.Equal(t, model.CategoryGroceries, pattern.DefaultCategory)
	assert.True(t, pattern.Enabled)
	assert.False(t, pattern.CreatedAt.IsZero())
}

func TestSessionRejectsOutOfOrderActions(t *testing.T) {
	session := NewSession("Lulo")

	tests := []struct {
		name string
		call func() error
	}{
		{name: "amount before message", call: func() error { return session.SelectAmount(0, 5) }},
		{name: "merchant before message", call: func() error { return session.SelectMerchant(0, 5) }},
		{name: "confirm before message", call: func() error { return session.ConfirmExample() }},
		{name: "review before examples", call: func() error { return session.RequestReview() }},
		{name: "approve before review", call: func() error { return session.ApprovePattern() }},
		{name: "category before approval", call: func() error { return session.SetCategory(model.CategoryGroceries) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.Equal(t, StateSelectSMS, session.State(), "state must not change on a rejected action")
		})
	}

	_, err := session.Finish()
	require.Error(t, err)
}

func TestSessionRejectsEmptyExample(t *testing.T) {
	session := NewSession("Lulo")
	require.NoError(t, session.SelectMessage("891234", "Compra por $45.000 en TIENDA D1."))
	require.NoError(t, session.SkipAmount())
	require.NoError(t, session.SkipMerchant())

	err := session.ConfirmExample()
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidSelection)
	assert.Equal(t, StateSelectOptionalFields, session.State())
	assert.Empty(t, session.Examples())
}

func TestSessionRejectsInvalidSelection(t *testing.T) {
	session := NewSession("Lulo")
	require.NoError(t, session.SelectMessage("891234", "Compra por $45.000"))

	err := session.SelectAmount(12, 500)
	require.Error(t, err)
	assert.Equal(t, StateSelectAmount, session.State())
}

func TestSessionOptionalFields(t *testing.T) {
	body := "Compra por $45.000 en TIENDA D1. Saldo: $500.000"
	session := NewSession("Lulo")
	require.NoError(t, session.SelectMessage("891234", body))
	require.NoError(t, session.SelectAmount(12, 18))
	require.NoError(t, session.SelectMerchant(22, 31))
	require.NoError(t, session.AddOptionalField(model.FieldBalance, 41, 48))
	require.NoError(t, session.ConfirmExample())

	examples := session.Examples()
	require.Len(t, examples, 1)
	require.Len(t, examples[0].Selections, 3)
	assert.Equal(t, model.FieldBalance, examples[0].Selections[2].Field)
}

func TestSessionRejectsEmptyBody(t *testing.T) {
	session := NewSession("Lulo")
	err := session.SelectMessage("891234", "")
	require.Error(t, err)
	assert.Equal(t, StateSelectSMS, session.State())
}
