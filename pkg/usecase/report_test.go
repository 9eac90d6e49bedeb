package usecase_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/secmon-lab/warden/pkg/repository/memory"
	"github.com/secmon-lab/warden/pkg/service/recorder"
	"github.com/secmon-lab/warden/pkg/usecase"
)

func TestReportRun(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing pending yields a short all-clear", func(t *testing.T) {
		repo := memory.New()
		chatSvc := newMockChatService()
		uc := usecase.New(repo, chatSvc, recorder.New(), nil, testPolicy())

		gt.NoError(t, uc.Report.Run(ctx))

		gt.Array(t, chatSvc.dms).Length(1)
		gt.Value(t, chatSvc.dms[0].UserID).Equal(testOwner)
		gt.Value(t, strings.Contains(chatSvc.dms[0].Text, "nothing pending")).Equal(true)
		gt.Array(t, chatSvc.postedTo(testAuditChannel)).Length(0)
	})

	t.Run("summary plus cards for pending work", func(t *testing.T) {
		repo := memory.New()
		chatSvc := newMockChatService()
		uc := usecase.New(repo, chatSvc, recorder.New(), nil, testPolicy())

		_, err := uc.Ledger.Record(ctx, banRequest())
		gt.NoError(t, err).Required()
		_, err = uc.Appeal.Submit(ctx, testCommunity, "U-BANNED", "please")
		gt.NoError(t, err).Required()

		// 2 cards from recording, 1 from appeal submission
		before := len(chatSvc.postedTo(testAuditChannel))

		gt.NoError(t, uc.Report.Run(ctx))

		gt.Array(t, chatSvc.dms).Length(1)
		gt.Value(t, strings.Contains(chatSvc.dms[0].Text, "1 action(s)")).Equal(true)
		gt.Value(t, strings.Contains(chatSvc.dms[0].Text, "1 appeal(s)")).Equal(true)

		// One action card and one appeal card rendered by the report.
		after := len(chatSvc.postedTo(testAuditChannel))
		gt.Value(t, after-before).Equal(2)
	})

	t.Run("card count is capped per set", func(t *testing.T) {
		repo := memory.New()
		chatSvc := newMockChatService()
		policy := testPolicy()
		policy.ReportCardLimit = 3
		uc := usecase.New(repo, chatSvc, recorder.New(), nil, policy)

		for i := 0; i < 5; i++ {
			req := banRequest()
			req.TargetID = "U-TARGET"
			req.Reason = fmt.Sprintf("case %d", i)
			_, err := uc.Ledger.Record(ctx, req)
			gt.NoError(t, err).Required()
		}

		before := len(chatSvc.postedTo(testAuditChannel))
		gt.NoError(t, uc.Report.Run(ctx))
		after := len(chatSvc.postedTo(testAuditChannel))

		gt.Value(t, after-before).Equal(3)
		gt.Value(t, strings.Contains(chatSvc.dms[0].Text, "5 action(s)")).Equal(true)
	})
}
