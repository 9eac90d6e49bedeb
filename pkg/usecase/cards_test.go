package usecase

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/m-mizutani/gt"

	"github.com/secmon-lab/warden/pkg/domain/model"
)

func TestContextExcerptTruncation(t *testing.T) {
	t.Run("long multi-byte text truncates on a rune boundary", func(t *testing.T) {
		excerpt := contextExcerpt([]model.ContextMessage{{
			AuthorID: "U1",
			Text:     strings.Repeat("あ", 200),
		}})

		gt.Value(t, utf8.ValidString(excerpt)).Equal(true)
		gt.Value(t, strings.Count(excerpt, "あ")).Equal(120)
		gt.Value(t, strings.Contains(excerpt, "…")).Equal(true)
	})

	t.Run("short text is kept verbatim", func(t *testing.T) {
		excerpt := contextExcerpt([]model.ContextMessage{{
			AuthorID: "U1",
			Text:     "hello there",
		}})
		gt.Value(t, strings.Contains(excerpt, "hello there")).Equal(true)
		gt.Value(t, strings.Contains(excerpt, "…")).Equal(false)
	})

	t.Run("empty snapshot yields nothing", func(t *testing.T) {
		gt.Value(t, contextExcerpt(nil)).Equal("")
	})
}
