package mailer

import "html/template"

const welcomeTemplate = `<html>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
  <h2>Welcome, {{.FirstName}}!</h2>
  <p>Your Nile Admin account has been created. Please confirm your email
  address to finish setting things up.</p>
  <p><a href="{{.VerifyURL}}" style="color: #2563eb;">Verify my email</a></p>
  <p>If you did not create this account, you can ignore this message.</p>
</body>
</html>`

const verificationTemplate = `<html>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
  <h2>Hi {{.FirstName}},</h2>
  <p>Use the link below to verify your email address.</p>
  <p><a href="{{.VerifyURL}}" style="color: #2563eb;">Verify my email</a></p>
</body>
</html>`

const passwordResetTemplate = `<html>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
  <h2>Hi {{.FirstName}},</h2>
  <p>We received a request to reset your password. This link expires in one
  hour.</p>
  <p><a href="{{.ResetURL}}" style="color: #2563eb;">Reset my password</a></p>
  <p>If you did not request this, no action is needed.</p>
</body>
</html>`

func parseTemplates() map[string]*template.Template {
	return map[string]*template.Template{
		"welcome":        template.Must(template.New("welcome").Parse(welcomeTemplate)),
		"verification":   template.Must(template.New("verification").Parse(verificationTemplate)),
		"password_reset": template.Must(template.New("password_reset").Parse(passwordResetTemplate)),
	}
}
