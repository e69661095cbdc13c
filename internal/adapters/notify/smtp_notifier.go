package notify

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"weekly-route-service/internal/logger"
	"weekly-route-service/internal/ports"
)

// SMTPNotifier delivers customer and operations mails over SMTP. Every
// method is fire-and-forget: delivery failures are logged and never
// propagated, so notification problems cannot fail a batch run.
type SMTPNotifier struct {
	dialer   *gomail.Dialer
	from     string
	opsEmail string
	log      logger.Logger
}

var _ ports.Notifier = (*SMTPNotifier)(nil)

func NewSMTPNotifier(host string, port int, user, password, opsEmail string, log logger.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		dialer:   gomail.NewDialer(host, port, user, password),
		from:     user,
		opsEmail: opsEmail,
		log:      log,
	}
}

func (n *SMTPNotifier) RouteGenerated(region string, mapsLink string) {
	button := ""
	if mapsLink != "" {
		button = fmt.Sprintf(`
		<p style="text-align:center; margin: 20px 0;">
			<a href="%s" style="background-color: #4CAF50; border: none; color: white; padding: 15px 32px; text-align: center; text-decoration: none; display: inline-block; font-size: 16px;">
				Ver ruta en Google Maps
			</a>
		</p>`, mapsLink)
	}

	body := fmt.Sprintf(`
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto;">
		<h2 style="color:#2c3e50;">Ruta generada para la provincia de %[1]s</h2>
		<p>Se ha generado la ruta &oacute;ptima para las &oacute;rdenes de <strong>%[1]s</strong>.</p>
		%[2]s
		<hr/>
		<p style="font-size:12px; color:#7f8c8d; text-align:center;">
			Este es un correo autom&aacute;tico generado por el sistema de rutas.
		</p>
	</div>`, region, button)

	n.send(n.opsEmail, fmt.Sprintf("Nueva ruta generada - %s", region), body)
}

func (n *SMTPNotifier) OrderRescheduled(email string, orderNumber string, rescheduleCount int) {
	body := fmt.Sprintf(`
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto;">
		<h2 style="color:#2c3e50;">Tu pedido fue reprogramado</h2>
		<p style="font-size: 16px; color: #555;">
			No pudimos entregar tu pedido <strong>%s</strong>; lo reprogramamos para el pr&oacute;ximo reparto
			(intento %d).
		</p>
		<p style="font-size: 16px; color: #555;">
			Por favor verific&aacute; que tu direcci&oacute;n de entrega est&eacute; completa.
		</p>
	</div>`, orderNumber, rescheduleCount)

	n.send(email, fmt.Sprintf("Pedido %s reprogramado", orderNumber), body)
}

func (n *SMTPNotifier) OrderCancelled(email string, orderNumber string) {
	body := fmt.Sprintf(`
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto;">
		<h2 style="color:#2c3e50;">Tu pedido fue cancelado</h2>
		<p style="font-size: 16px; color: #555;">
			Tu pedido <strong>%s</strong> fue cancelado luego de varios intentos de entrega fallidos.
			El stock reservado fue liberado.
		</p>
	</div>`, orderNumber)

	n.send(email, fmt.Sprintf("Pedido %s cancelado", orderNumber), body)
}

func (n *SMTPNotifier) send(to, subject, htmlBody string) {
	if to == "" {
		n.log.Debugf("notify: skipped mail subject=%q: empty recipient", subject)
		return
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := n.dialer.DialAndSend(m); err != nil {
		n.log.Errorf("notify: send mail to=%s subject=%q: %v", to, subject, err)
		return
	}
	n.log.Infof("notify: sent mail to=%s subject=%q", to, subject)
}
