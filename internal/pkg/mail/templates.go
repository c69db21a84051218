package mail

import (
	"bytes"
	"fmt"
	"html/template"
)

var reportReadyTmpl = template.Must(template.New("report_ready").Parse(`<div style="font-family: Arial, sans-serif; line-height: 1.6;">
  <h2>Your {{.ReportType}} report</h2>
  <p>Thank you for submitting your idea. Your free summary is ready now.</p>
  <p>You can view your report using the secure link below:</p>
  <p><a href="{{.ReportURL}}" style="background:#2563eb;color:#fff;padding:12px 16px;border-radius:8px;text-decoration:none;display:inline-block">View Your Report</a></p>
  {{if .Bundled}}<p style="margin-top:16px;">This is part of your Founder Bundle. Progress updates will appear on your dashboard.</p>
  {{else}}<p style="margin-top:16px;">Inside you'll find a free summary. You can unlock the full report any time.</p>
  {{end}}</div>
`))

var receivedTmpl = template.Must(template.New("received").Parse(`<div style="font-family: Arial, sans-serif; line-height: 1.6;">
  <h2>We received your idea</h2>
  <p>Your {{.ReportType}} report is being prepared. We will email you as soon as it is ready.</p>
  <p>You can check its progress at any time: <a href="{{.ReportURL}}">{{.ReportURL}}</a></p>
</div>
`))

type reportData struct {
	ReportType string
	ReportURL  string
	Bundled    bool
}

// ReportReadySubject is the subject line of the report delivery email.
func ReportReadySubject(reportType string, bundled bool) string {
	subject := fmt.Sprintf("Your %s report is ready", reportType)
	if bundled {
		subject += " (Bundle)"
	}
	return subject
}

// ReportReady builds the email that links a submitter to their report.
func ReportReady(to, reportType, reportURL string, bundled bool) (Message, error) {
	var buf bytes.Buffer
	if err := reportReadyTmpl.Execute(&buf, reportData{ReportType: reportType, ReportURL: reportURL, Bundled: bundled}); err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: ReportReadySubject(reportType, bundled),
		HTML:    buf.String(),
		Text:    fmt.Sprintf("Your %s report is ready: %s", reportType, reportURL),
	}, nil
}

// SubmissionReceived builds the confirmation sent after a submission is stored.
func SubmissionReceived(to, reportType, reportURL string) (Message, error) {
	var buf bytes.Buffer
	if err := receivedTmpl.Execute(&buf, reportData{ReportType: reportType, ReportURL: reportURL}); err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: fmt.Sprintf("We received your %s request", reportType),
		HTML:    buf.String(),
		Text:    fmt.Sprintf("Your %s report is being prepared. Track it here: %s", reportType, reportURL),
	}, nil
}
