package mailer

import "fmt"

// Wrap puts body content into the shared mail layout. logoDataURL may be
// empty when no logo is stored.
func Wrap(title, bodyHTML, logoDataURL string) string {
	logo := ""
	if logoDataURL != "" {
		logo = fmt.Sprintf(`<div style="text-align:center; margin-bottom:20px;">
      <img src="%s" alt="Logo" style="max-width:200px;" />
    </div>`, logoDataURL)
	}

	return fmt.Sprintf(`
  <div style="font-family: Arial, sans-serif; max-width:600px; margin:auto; padding:20px; border-radius:8px; background:#f9f9f9; border:1px solid #ddd;">
    %s
    <h2 style="color:#0073e6;">%s</h2>
    %s
    <p style="margin-top:24px; font-size:12px; color:#999;">Restaurant Langhaus</p>
  </div>`, logo, title, bodyHTML)
}
