package panel

import (
	"github.com/pkg/errors"
	"html/template"
	"io"
)

// MaskCard hides every card digit but the last four.
func MaskCard(last4 string) string {
	return "•••• •••• •••• " + last4
}

// Page is everything the dashboard page needs besides the panel itself.
type Page struct {
	Title        string
	Account      string
	CardMasked   string
	Balance      string
	SparklineURL string
	Panel        Snapshot
}

var pageTemplate = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"times": func(n int) []struct{} { return make([]struct{}, n) },
}).Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<section class="card"><span class="label">{{.Account}}</span> <span id="cardMasked">{{.CardMasked}}</span></section>
<section class="balance">{{if .Balance}}<span class="label">Balance</span> <b>₹ {{.Balance}}</b>{{end}}</section>
<section class="transactions">
<header><h2>Recent transactions</h2><span id="txHint">{{.Panel.Hint}}</span></header>
<img id="spark" src="{{.SparklineURL}}" alt="">
<table>
<thead><tr><th>Type</th><th>Merchant</th><th>Amount</th><th>Status</th><th>Time</th></tr></thead>
<tbody id="txBody">
{{- if eq .Panel.State "loading"}}
{{- range times .Panel.Skeleton}}
<tr><td colspan="5"><div class="skeleton"></div></td></tr>
{{- end}}
{{- else if eq .Panel.State "errored"}}
<tr><td colspan="5">{{.Panel.Message}}</td></tr>
{{- else}}
{{- range .Panel.Rows}}
<tr><td>{{.Type}}</td><td>{{.Merchant}}</td><td><b>{{.Amount}}</b></td><td><span class="pillTag {{.Style}}">{{.Status}}</span></td><td>{{.Time}}</td></tr>
{{- end}}
{{- end}}
</tbody>
</table>
</section>
</body>
</html>
`))

func WriteHTML(w io.Writer, page Page) error {
	if err := pageTemplate.Execute(w, page); err != nil {
		return errors.Wrap(err, "render dashboard page")
	}
	return nil
}
