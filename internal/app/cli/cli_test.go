package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	analysis "trade_advisor/internal/feature/analysis/domain/entity"
	chat "trade_advisor/internal/feature/chathistory/domain/entity"
)

type mockAnalyzer struct {
	RunCycleFunc func(ctx context.Context, ticker string) (analysis.AnalysisRecord, error)
}

func (m *mockAnalyzer) RunCycle(ctx context.Context, ticker string) (analysis.AnalysisRecord, error) {
	return m.RunCycleFunc(ctx, ticker)
}

type mockChatStore struct {
	exp      chat.Export
	imported *chat.Export
}

func (m *mockChatStore) Export(ctx context.Context) (chat.Export, error) { return m.exp, nil }

func (m *mockChatStore) Import(ctx context.Context, exp chat.Export) (int, error) {
	m.imported = &exp
	return len(exp.Histories), nil
}

// run はコマンドを実行し、標準出力の内容を返します。
func run(t *testing.T, open Opener, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd(open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func openWith(d *Deps) Opener {
	return func(ctx context.Context) (*Deps, error) { return d, nil }
}

func TestAnalyze(t *testing.T) {
	closed := false
	d := &Deps{
		Analysis: &mockAnalyzer{RunCycleFunc: func(ctx context.Context, ticker string) (analysis.AnalysisRecord, error) {
			return analysis.AnalysisRecord{ID: "rec-1", Ticker: strings.ToUpper(ticker)}, nil
		}},
		Close: func() error { closed = true; return nil },
	}

	out, err := run(t, openWith(d), "", "analyze", "xauusd")
	require.NoError(t, err)

	var rec analysis.AnalysisRecord
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "rec-1", rec.ID)
	assert.Equal(t, "XAUUSD", rec.Ticker)
	assert.True(t, closed, "deps must be closed after the command")
}

func TestAnalyze_Error(t *testing.T) {
	d := &Deps{Analysis: &mockAnalyzer{RunCycleFunc: func(ctx context.Context, ticker string) (analysis.AnalysisRecord, error) {
		return analysis.AnalysisRecord{}, errors.New("boom")
	}}}

	_, err := run(t, openWith(d), "", "analyze", "XAUUSD")
	assert.EqualError(t, err, "boom")
}

func TestChatExportImport(t *testing.T) {
	ts := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	store := &mockChatStore{exp: chat.Export{
		Version:    chat.ExportVersion,
		ExportedAt: ts,
		Histories: map[string][]chat.ChatMessage{
			"XAUUSD": {{ID: "m1", Role: chat.RoleUser, Content: "gold?", Timestamp: ts}},
		},
	}}
	open := openWith(&Deps{Chat: store})

	file := filepath.Join(t.TempDir(), "chats.json")
	_, err := run(t, open, "", "chat", "export", "--out", file)
	require.NoError(t, err)

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"exportedAt"`)
	assert.Contains(t, string(b), `"gold?"`)

	out, err := run(t, open, "", "chat", "import", file)
	require.NoError(t, err)
	assert.Equal(t, "imported 1 ticker(s)\n", out)
	require.NotNil(t, store.imported)
	assert.Equal(t, "gold?", store.imported.Histories["XAUUSD"][0].Content)
}

func TestChatImport_BadFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(file, []byte("{not json"), 0o600))

	opened := false
	open := func(ctx context.Context) (*Deps, error) {
		opened = true
		return &Deps{}, nil
	}

	_, err := run(t, open, "", "chat", "import", file)
	assert.Error(t, err)
	assert.False(t, opened, "a malformed file must be rejected before opening the database")
}

func TestHashPassword(t *testing.T) {
	noOpen := func(ctx context.Context) (*Deps, error) {
		t.Fatal("hash-password must not open dependencies")
		return nil, nil
	}

	t.Run("argument", func(t *testing.T) {
		out, err := run(t, noOpen, "", "hash-password", "s3cret", "--cost", "4")
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(strings.TrimSpace(out)), []byte("s3cret")))
	})

	t.Run("stdin", func(t *testing.T) {
		out, err := run(t, noOpen, "from-stdin\n", "hash-password", "--cost", "4")
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(strings.TrimSpace(out)), []byte("from-stdin")))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := run(t, noOpen, "\n", "hash-password", "--cost", "4")
		assert.Error(t, err)
	})
}
