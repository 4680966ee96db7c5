package services

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"visionm/pkg/mail"
)

// Notifier dispatches the workflow emails. Every method is a single blocking
// send; callers decide whether a failure is fatal (project invites) or
// best-effort (everything else). mail.ErrDisabled passes through untouched so
// callers can tell "no channel configured" apart from a delivery failure.
type Notifier interface {
	JoinRequestReceived(ctx context.Context, adminEmail, requesterName, requesterEmail, companyName, approveLink, rejectLink string) error
	JoinRequestApproved(ctx context.Context, requesterEmail, requesterName, companyName string) error
	JoinRequestRejected(ctx context.Context, requesterEmail, requesterName, companyName string) error
	CompanyInviteCreated(ctx context.Context, inviteEmail, inviteName, companyName, inviteLink string) error
	ProjectAccessGranted(ctx context.Context, userEmail, projectName, accessLink string) error
}

type emailNotifier struct {
	mailer    mail.Mailer
	templates map[string]*template.Template
}

const (
	joinRequestReceivedTmpl = `Hello,

{{.RequesterName}} ({{.RequesterEmail}}) has requested to join the workspace "{{.CompanyName}}".

Approve: {{.ApproveLink}}
Reject:  {{.RejectLink}}

You can also manage pending requests from the VisionM admin panel.
`
	joinRequestApprovedTmpl = `Hello {{.RequesterName}},

Your request to join the workspace "{{.CompanyName}}" has been approved.
You now have access from your VisionM account.
`
	joinRequestRejectedTmpl = `Hello {{.RequesterName}},

Your request to join the workspace "{{.CompanyName}}" has been declined.
Contact the workspace admin if you believe this is a mistake.
`
	companyInviteTmpl = `Hello {{.InviteName}},

You have been invited to join the workspace "{{.CompanyName}}" on VisionM.
Use the following link to accept the invite:
{{.InviteLink}}

If you did not expect this email, you can ignore it.
`
	// The shared password is deliberately absent from this message. It must
	// reach the user through an out-of-band channel.
	projectAccessTmpl = `Hello,

You have been granted access to the project "{{.ProjectName}}" on VisionM:
{{.AccessLink}}

The access password will be shared with you separately.
`
)

func NewEmailNotifier(mailer mail.Mailer) Notifier {
	templates := map[string]*template.Template{
		"join_request_received": template.Must(template.New("join_request_received").Parse(joinRequestReceivedTmpl)),
		"join_request_approved": template.Must(template.New("join_request_approved").Parse(joinRequestApprovedTmpl)),
		"join_request_rejected": template.Must(template.New("join_request_rejected").Parse(joinRequestRejectedTmpl)),
		"company_invite":        template.Must(template.New("company_invite").Parse(companyInviteTmpl)),
		"project_access":        template.Must(template.New("project_access").Parse(projectAccessTmpl)),
	}
	return &emailNotifier{mailer: mailer, templates: templates}
}

func (n *emailNotifier) render(name string, data any) (string, error) {
	tmpl, ok := n.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown notification template: %s", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render notification template %s: %w", name, err)
	}
	return buf.String(), nil
}

func (n *emailNotifier) send(ctx context.Context, to, subject, body string) error {
	return n.mailer.Send(ctx, mail.Message{
		To:      []string{to},
		Subject: subject,
		Body:    body,
	})
}

func (n *emailNotifier) JoinRequestReceived(ctx context.Context, adminEmail, requesterName, requesterEmail, companyName, approveLink, rejectLink string) error {
	body, err := n.render("join_request_received", map[string]string{
		"RequesterName":  requesterName,
		"RequesterEmail": requesterEmail,
		"CompanyName":    companyName,
		"ApproveLink":    approveLink,
		"RejectLink":     rejectLink,
	})
	if err != nil {
		return err
	}
	return n.send(ctx, adminEmail, fmt.Sprintf("Workspace join request for %s", companyName), body)
}

func (n *emailNotifier) JoinRequestApproved(ctx context.Context, requesterEmail, requesterName, companyName string) error {
	body, err := n.render("join_request_approved", map[string]string{
		"RequesterName": requesterName,
		"CompanyName":   companyName,
	})
	if err != nil {
		return err
	}
	return n.send(ctx, requesterEmail, fmt.Sprintf("Your request to join %s was approved", companyName), body)
}

func (n *emailNotifier) JoinRequestRejected(ctx context.Context, requesterEmail, requesterName, companyName string) error {
	body, err := n.render("join_request_rejected", map[string]string{
		"RequesterName": requesterName,
		"CompanyName":   companyName,
	})
	if err != nil {
		return err
	}
	return n.send(ctx, requesterEmail, fmt.Sprintf("Your request to join %s was declined", companyName), body)
}

func (n *emailNotifier) CompanyInviteCreated(ctx context.Context, inviteEmail, inviteName, companyName, inviteLink string) error {
	body, err := n.render("company_invite", map[string]string{
		"InviteName":  inviteName,
		"CompanyName": companyName,
		"InviteLink":  inviteLink,
	})
	if err != nil {
		return err
	}
	return n.send(ctx, inviteEmail, fmt.Sprintf("You're invited to join %s on VisionM", companyName), body)
}

func (n *emailNotifier) ProjectAccessGranted(ctx context.Context, userEmail, projectName, accessLink string) error {
	body, err := n.render("project_access", map[string]string{
		"ProjectName": projectName,
		"AccessLink":  accessLink,
	})
	if err != nil {
		return err
	}
	return n.send(ctx, userEmail, fmt.Sprintf("Project access granted: %s", projectName), body)
}
