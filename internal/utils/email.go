package utils

import (
	"bytes"
	"fmt"
	"log"
	"os"

	"github.com/wneessen/go-mail"

	"trekora_back_end/internal/models"
)

func SendConfirmationEmail(to, subject, htmlBody string, pdfAttachment []byte) error {
	msg := mail.NewMsg()

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "noreply@trekora.com"
	}
	if err := msg.From(from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if pdfAttachment != nil {
		msg.AttachReader("billet_trekora.pdf", bytes.NewReader(pdfAttachment))
	}

	client, err := mail.NewClient(os.Getenv("SMTP_HOST"),
		mail.WithPort(587),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail à", to)
	return client.DialAndSend(msg)
}

// GenerateBookingConfirmationHTML génère le HTML de confirmation de réservation
func GenerateBookingConfirmationHTML(b models.Booking, tourName string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Confirmation de réservation</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Votre aventure est confirmée !</h2>
		<p>Bonjour,</p>
		<p>Votre réservation a été confirmée avec succès. Votre billet est en pièce jointe.</p>

		<h3>Détails de la réservation</h3>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<tbody>
				<tr>
					<td style="padding: 10px; border: 1px solid #ddd; font-weight: bold;">Tour</td>
					<td style="padding: 10px; border: 1px solid #ddd;">%s</td>
				</tr>
				<tr>
					<td style="padding: 10px; border: 1px solid #ddd; font-weight: bold;">Départ</td>
					<td style="padding: 10px; border: 1px solid #ddd;">%s</td>
				</tr>
				<tr>
					<td style="padding: 10px; border: 1px solid #ddd; font-weight: bold;">Référence</td>
					<td style="padding: 10px; border: 1px solid #ddd;">%s</td>
				</tr>
				<tr>
					<td style="padding: 10px; border: 1px solid #ddd; font-weight: bold;">Montant payé</td>
					<td style="padding: 10px; border: 1px solid #ddd;">%.2f€</td>
				</tr>
			</tbody>
		</table>

		<p style="margin-top: 30px; color: #555;">
			À bientôt sur les sentiers,<br>
			<strong>L'équipe Trekora</strong>
		</p>
	</div>
</body>
</html>`, tourName, b.StartDay, b.ID.String(), b.Price)
}
