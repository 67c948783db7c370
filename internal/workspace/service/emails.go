package service

import (
	"html/template"
	"strings"
)

// The transactional mails are deliberately plain: a short sentence, one
// call-to-action link, and the validity window spelled out.

var senderConfirmationTmpl = template.Must(template.New("sender-confirmation").Parse(`<html>
<body>
	<p>Bonjour{{if .Name}} {{.Name}}{{end}},</p>
	<p>Pour utiliser l'adresse <strong>{{.Email}}</strong> comme exp&eacute;diteur de vos campagnes,
	merci de confirmer que vous en &ecirc;tes bien le propri&eacute;taire :</p>
	<p><a href="{{.Link}}">Confirmer cette adresse</a></p>
	<p>Ce lien est valable 24 heures.</p>
</body>
</html>`))

var invitationTmpl = template.Must(template.New("invitation").Parse(`<html>
<body>
	<p>Bonjour,</p>
	<p>Vous &ecirc;tes invit&eacute;(e) &agrave; rejoindre un espace de travail
	avec le r&ocirc;le <strong>{{.Role}}</strong>.</p>
	<p><a href="{{.Link}}">Accepter l'invitation</a></p>
	<p>Cette invitation expire dans 3 jours.</p>
</body>
</html>`))

var recoveryTmpl = template.Must(template.New("recovery").Parse(`<html>
<body>
	<p>Bonjour,</p>
	<p>Une r&eacute;initialisation de votre mot de passe a &eacute;t&eacute; demand&eacute;e.</p>
	<p><a href="{{.Link}}">Choisir un nouveau mot de passe</a></p>
	<p>Ce lien est valable 1 heure. Si vous n'&ecirc;tes pas &agrave; l'origine de cette
	demande, ignorez ce message.</p>
</body>
</html>`))

func senderConfirmationEmail(name, email, link string) (subject, body string, err error) {
	var sb strings.Builder
	err = senderConfirmationTmpl.Execute(&sb, struct {
		Name  string
		Email string
		Link  string
	}{name, email, link})
	if err != nil {
		return "", "", err
	}
	return "Confirmez votre adresse d'expéditeur", sb.String(), nil
}

func invitationEmail(role, link string) (subject, body string, err error) {
	var sb strings.Builder
	err = invitationTmpl.Execute(&sb, struct {
		Role string
		Link string
	}{role, link})
	if err != nil {
		return "", "", err
	}
	return "Invitation à rejoindre l'espace de travail", sb.String(), nil
}

func recoveryEmail(link string) (subject, body string, err error) {
	var sb strings.Builder
	err = recoveryTmpl.Execute(&sb, struct{ Link string }{link})
	if err != nil {
		return "", "", err
	}
	return "Réinitialisation de votre mot de passe", sb.String(), nil
}
