package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/cornucopia-market/cornucopia-backend/internal/modules/approval"
	"github.com/cornucopia-market/cornucopia-backend/internal/modules/user"
)

// ApprovalNotifier emails the owner of a reviewed stand or product.
type ApprovalNotifier struct {
	users  user.Repository
	mailer Mailer
}

func NewApprovalNotifier(users user.Repository, mailer Mailer) *ApprovalNotifier {
	return &ApprovalNotifier{users: users, mailer: mailer}
}

// Notify implements approval.Notifier.
func (n *ApprovalNotifier) Notify(ctx context.Context, d *approval.Decision) error {
	owner, err := n.users.GetUserByID(ctx, d.Entity.OwnerID)
	if err != nil {
		return fmt.Errorf("notify: load owner %s: %w", d.Entity.OwnerID, err)
	}
	return n.mailer.Send(ctx, decisionMessage(owner, d))
}

func decisionMessage(owner *user.User, d *approval.Decision) Message {
	noun := "product"
	if d.Entity.Kind == approval.KindMarketStand {
		noun = "market stand"
	}
	verdict := strings.ToLower(string(d.History.NewStatus))

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", owner.DisplayName())
	fmt.Fprintf(&b, "Your %s %q has been %s.\n", noun, d.Entity.Name, verdict)
	if note := strings.TrimSpace(d.History.Note); note != "" {
		fmt.Fprintf(&b, "\nNote from the review team:\n%s\n", note)
	}
	if d.History.NewStatus == approval.StatusRejected {
		b.WriteString("\nYou can update the listing and submit it again.\n")
	}
	b.WriteString("\nCornucopia")

	return Message{
		To:      owner.Email,
		Subject: fmt.Sprintf("Your %s %q was %s", noun, d.Entity.Name, verdict),
		Text:    b.String(),
	}
}
