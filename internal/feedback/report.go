// internal/feedback/report.go
package feedback

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"tourism-router/internal/common/logger"
)

const reportTopPatterns = 10

// SESService is what the reporter needs from SES, mockable in tests.
type SESService interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// Reporter emails a periodic digest of what the store has learned.
type Reporter struct {
	store     *Store
	sesClient SESService
	fromEmail string
	toEmails  []string
	logger    logger.Logger
}

func NewReporter(store *Store, sesClient SESService, fromEmail string, toEmails []string, log logger.Logger) *Reporter {
	return &Reporter{
		store:     store,
		sesClient: sesClient,
		fromEmail: fromEmail,
		toEmails:  toEmails,
		logger:    log.With(map[string]interface{}{"component": "learning-reporter"}),
	}
}

// LearningReport renders the current store state as a plain-text digest.
func (r *Reporter) LearningReport() string {
	stats := r.store.GetStats()
	top := r.store.TopPatterns(reportTopPatterns)

	var b strings.Builder
	fmt.Fprintf(&b, "Relatório de aprendizado - %s\n\n", time.Now().Format("02/01/2006 15:04"))
	fmt.Fprintf(&b, "Feedback total: %d (positivo: %d, negativo: %d, neutro: %d)\n",
		stats.TotalFeedback, stats.PositiveFeedback, stats.NegativeFeedback, stats.NeutralFeedback)
	fmt.Fprintf(&b, "Correções aplicadas: %d\n", stats.CorrectionsApplied)
	fmt.Fprintf(&b, "Padrões aprendidos: %d\n", stats.LearningPatterns)

	if len(top) > 0 {
		b.WriteString("\nPadrões mais usados:\n")
		for _, p := range top {
			fmt.Fprintf(&b, "  [%s] %q -> %q (confiança %.2f, usos %d)\n",
				p.FactShape, p.MatchText, p.Correction, p.Confidence, p.UsageCount)
		}
	}

	return b.String()
}

// SendReport emails the digest. Skipped silently when no recipients or no
// SES client are configured.
func (r *Reporter) SendReport(ctx context.Context) error {
	if r.sesClient == nil || len(r.toEmails) == 0 {
		return nil
	}

	body := r.LearningReport()
	subject := fmt.Sprintf("Guatá - relatório de aprendizado %s", time.Now().Format("02/01/2006"))

	_, err := r.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: r.toEmails,
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(r.fromEmail),
	})
	if err != nil {
		r.logger.Error("report send failed", map[string]interface{}{"error": err})
		return fmt.Errorf("send learning report: %w", err)
	}

	r.logger.Info("learning report sent", map[string]interface{}{
		"recipients": len(r.toEmails),
	})
	return nil
}

// Run emails the digest on a fixed interval until ctx is done.
func (r *Reporter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := r.SendReport(ctx); err != nil {
				r.logger.Warn("periodic report failed", map[string]interface{}{"error": err})
			}
		case <-ctx.Done():
			return
		}
	}
}
