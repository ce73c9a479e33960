package usecase

import (
	"fmt"
	"html/template"
	"strings"

	"newsbrief/internal/domain"
)

const newsletterTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Name}}</title>
<style>
  body { font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; margin: 0; background: #f4f4f7; color: #333; }
  .container { max-width: 600px; margin: 0 auto; padding: 24px; background: #ffffff; }
  .header { border-bottom: 3px solid #4f46e5; padding-bottom: 16px; margin-bottom: 24px; }
  .header h1 { margin: 0; color: #4f46e5; font-size: 28px; }
  .header .date { margin: 4px 0 0; color: #6b7280; font-size: 14px; }
  .opening { font-size: 16px; line-height: 1.5; }
  .article { margin: 24px 0; padding: 16px; background: #f9fafb; border-radius: 8px; }
  .article h3 { margin: 0 0 8px; font-size: 18px; }
  .article .summary { margin: 0 0 8px; line-height: 1.5; }
  .article ul { margin: 8px 0; padding-left: 20px; }
  .article li { margin: 4px 0; font-size: 14px; }
  .read-more { color: #4f46e5; text-decoration: none; font-weight: 600; }
  .section { margin: 24px 0; padding-top: 16px; border-top: 1px solid #e5e7eb; }
  .section h3 { margin: 0 0 8px; font-size: 16px; color: #4f46e5; }
</style>
</head>
<body>
<div class="container">
  <div class="header">
    <h1>{{.Name}}</h1>
    <p class="date">{{.DateLong}}</p>
  </div>
  <p class="opening">{{.Editorial.OpeningHook}}</p>
{{- range .Articles}}
  <div class="article">
    <h3>{{.Headline}}</h3>
    <p class="summary">{{.Summary}}</p>
{{- if .KeyTakeaways}}
    <ul>
{{- range .KeyTakeaways}}
      <li>{{.}}</li>
{{- end}}
    </ul>
{{- end}}
    <a class="read-more" href="{{.URL}}">Read the full story &rarr;</a>
  </div>
{{- end}}
  <div class="section">
    <h3>Tool of the Day</h3>
    <p>{{.Editorial.ToolOfTheDay}}</p>
  </div>
  <div class="section">
    <h3>Closing Thought</h3>
    <p>{{.Editorial.ClosingThought}}</p>
  </div>
</div>
</body>
</html>
`

var newsletterTmpl = template.Must(template.New("newsletter").Parse(newsletterTemplate))

type digestView struct {
	domain.NewsletterDigest
	DateLong string
}

// renderHTML produces the email body. Output is deterministic for a
// fixed digest.
func renderHTML(digest domain.NewsletterDigest) (string, error) {
	view := digestView{
		NewsletterDigest: digest,
		DateLong:         digest.Date.Format("Monday, January 2, 2006"),
	}

	var b strings.Builder
	if err := newsletterTmpl.Execute(&b, view); err != nil {
		return "", err
	}
	return b.String(), nil
}

// renderText produces the plain-text alternative body.
func renderText(digest domain.NewsletterDigest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\n", digest.Name, digest.Date.Format("Monday, January 2, 2006"))
	fmt.Fprintf(&b, "%s\n\n", digest.Editorial.OpeningHook)
	b.WriteString("--- TOP STORIES ---\n\n")
	for _, article := range digest.Articles {
		fmt.Fprintf(&b, "Headline: %s\n", article.Headline)
		fmt.Fprintf(&b, "Summary: %s\n", article.Summary)
		for _, takeaway := range article.KeyTakeaways {
			fmt.Fprintf(&b, "  * %s\n", takeaway)
		}
		fmt.Fprintf(&b, "Link: %s\n\n", article.URL)
	}
	fmt.Fprintf(&b, "--- TOOL OF THE DAY ---\n%s\n\n", digest.Editorial.ToolOfTheDay)
	fmt.Fprintf(&b, "--- CLOSING THOUGHT ---\n%s\n", digest.Editorial.ClosingThought)
	return b.String()
}
