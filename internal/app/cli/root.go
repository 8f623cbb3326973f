// Package cli は運用向けのコマンドラインインターフェースを提供します。
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"trade_advisor/internal/app/di"
	analysis "trade_advisor/internal/feature/analysis/domain/entity"
	chat "trade_advisor/internal/feature/chathistory/domain/entity"
	"trade_advisor/internal/platform/config"
)

// Analyzer は1銘柄の分析サイクルを実行します。
type Analyzer interface {
	RunCycle(ctx context.Context, ticker string) (analysis.AnalysisRecord, error)
}

// ChatStore は会話履歴のエクスポートとインポートを行います。
type ChatStore interface {
	Export(ctx context.Context) (chat.Export, error)
	Import(ctx context.Context, exp chat.Export) (int, error)
}

// Deps はコマンドが使うコンポーネントです。
type Deps struct {
	Analysis Analyzer
	Chat     ChatStore
	Close    func() error
}

// Opener はコマンド実行時にコンポーネントを組み立てます。
// hash-password のようにDBを必要としないコマンドでは呼ばれません。
type Opener func(ctx context.Context) (*Deps, error)

// OpenFromConfig は設定ファイルを読み込み、di でコンポーネントを組み立てます。
func OpenFromConfig(path string) Opener {
	return func(ctx context.Context) (*Deps, error) {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		c, err := di.Build(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &Deps{Analysis: c.Analysis, Chat: c.ChatHistory, Close: c.Close}, nil
	}
}

// NewRootCmd はルートコマンドを生成します。
func NewRootCmd(open Opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "advisor",
		Short:         "Operator tools for the trade advisor backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newAnalyzeCmd(open))
	root.AddCommand(newChatCmd(open))
	root.AddCommand(newHashPasswordCmd())
	return root
}

// withDeps は open で組み立てたコンポーネントで fn を実行し、終了後に解放します。
func withDeps(ctx context.Context, open Opener, fn func(*Deps) error) error {
	deps, err := open(ctx)
	if err != nil {
		return err
	}
	if deps.Close != nil {
		defer deps.Close()
	}
	return fn(deps)
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
