package mailer

import "fmt"

// NotificationTemplate renders the dark-themed TaskFlow notification
// email. The message may contain inline HTML (e.g. a highlighted count).
func NotificationTemplate(title, message, actionURL, actionText string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin:0;padding:0;background-color:#050608;font-family:'Outfit','Inter',sans-serif;">
  <div style="width:100%%;background-color:#050608;padding:40px 0;">
    <div style="max-width:600px;margin:0 auto;background:linear-gradient(135deg,#0f1115 0%%,#050608 100%%);border:1px solid rgba(255,255,255,0.08);border-radius:32px;overflow:hidden;">
      <div style="padding:48px;">
        <div style="margin-bottom:40px;">
          <span style="width:44px;height:44px;background:#ffffff;border-radius:14px;display:inline-block;text-align:center;line-height:44px;color:#000000;font-weight:900;font-size:18px;margin-right:14px;">T</span>
          <span style="color:#ffffff;font-weight:700;font-size:20px;">TaskFlow</span>
        </div>
        <h1 style="font-size:36px;font-weight:900;color:#ffffff;margin:0 0 24px 0;">%s</h1>
        <p style="color:#94a3b8;font-size:16px;line-height:1.6;margin:0 0 40px 0;">%s</p>
        <a href="%s" style="display:inline-block;background:#3b82f6;color:#ffffff;text-decoration:none;padding:16px 32px;border-radius:16px;font-weight:700;font-size:15px;">%s</a>
        <p style="color:#475569;font-size:12px;margin:48px 0 0 0;">You are receiving this because you have an active TaskFlow workspace.</p>
      </div>
    </div>
  </div>
</body>
</html>`, title, message, actionURL, actionText)
}
