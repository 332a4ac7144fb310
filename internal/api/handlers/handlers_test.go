package handlers

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	db "github.com/rgukt-papers/paperhub/internal/core/database"
	"github.com/rgukt-papers/paperhub/internal/models"
)

func TestParseDataURI(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("scanned answer"))

	att, err := parseDataURI("data:image/png;base64," + payload)
	require.NoError(t, err)
	assert.Equal(t, "image/png", att.MIMEType)
	assert.Equal(t, []byte("scanned answer"), att.Data)

	_, err = parseDataURI("https://example.com/image.png")
	assert.Error(t, err)

	_, err = parseDataURI("data:image/png,rawdata")
	assert.Error(t, err, "only base64 data URIs are accepted")

	_, err = parseDataURI("data:image/png;base64,!!!")
	assert.Error(t, err)
}

func TestQuestionsFromExtracted(t *testing.T) {
	assert.Nil(t, questionsFromExtracted(nil))

	extracted := []models.ExtractedQuestion{
		{QuestionNumber: "1(a)", Text: "Define entropy."},
		{QuestionNumber: "1(b)", Text: "State the zeroth law."},
	}
	qs := questionsFromExtracted(extracted)
	require.Len(t, qs, 2)
	for i, q := range qs {
		assert.NotEmpty(t, q.ID)
		assert.Equal(t, extracted[i].QuestionNumber, q.QuestionNumber)
		assert.Equal(t, extracted[i].Text, q.Text)
		assert.NotNil(t, q.Solutions)
	}
}

func TestAuthorForAccount(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()

	acc := &models.Account{Name: "Anusha", Email: "anusha@rguktrkv.ac.in", Picture: "https://picsum.photos/40"}
	require.NoError(t, store.CreateAccount(ctx, acc))

	// first contribution creates and links a profile
	author, err := authorForAccount(ctx, store, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anusha", author.Name)
	assert.NotEmpty(t, author.ID)

	linked, err := store.GetAccountByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, author.ID, linked.ProfileID)

	// subsequent calls resolve the same profile
	again, err := authorForAccount(ctx, store, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, author.ID, again.ID)

	_, err = authorForAccount(ctx, store, "no-such-account")
	assert.Error(t, err)
}

func TestAuthorForAccount_NameFallsBackToEmail(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()

	acc := &models.Account{Email: "anon@rguktn.ac.in"}
	require.NoError(t, store.CreateAccount(ctx, acc))

	author, err := authorForAccount(ctx, store, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "anon@rguktn.ac.in", author.Name)
}
