package utils

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/skip2/go-qrcode"
)

// GenerateBookingQR encode la référence de réservation en QR, en base64 prêt
// à mettre dans <img src="..."> — le QR est scanné par les guides au départ.
func GenerateBookingQR(bookingID, tourID, startDay string) (string, error) {
	payload := fmt.Sprintf("TRK|%s|%s|%s", bookingID, tourID, startDay)

	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// RenderTicketPDF charge la page billet du front et l'imprime en PDF.
// frontendURL doit ressembler à: http://localhost:3000/ticket
func RenderTicketPDF(frontendURL, bookingID, qrBase64 string) ([]byte, error) {
	q := url.Values{}
	q.Set("id", bookingID)
	q.Set("qr", qrBase64)

	fullURL := fmt.Sprintf("%s?%s", frontendURL, q.Encode())

	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	// timeout pour éviter de bloquer
	ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var pdfBuf []byte

	err := chromedp.Run(ctx,
		chromedp.Navigate(fullURL),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}

	return pdfBuf, nil
}

// GetFrontendTicketBaseURL récupère l'URL du front depuis l'env
func GetFrontendTicketBaseURL() string {
	u := os.Getenv("FRONTEND_TICKET_URL")
	if u == "" {
		// fallback local dev
		return "http://localhost:3000/ticket"
	}
	return u
}
