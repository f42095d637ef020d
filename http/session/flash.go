package session

const (
	// Default Flash Class
	FlashError   = "error"
	FlashInfo    = "info"
	FlashSuccess = "success"
	FlashWarning = "warning"

	// Default Flash Msg
	ContactUsErr          = "Algo deu errado. Fale conosco em %s."
	DefaultErrMsg         = "Erro inesperado. Tente novamente."
	LinkSentMsg           = "Email enviado! Confira sua caixa de entrada."
	ConfirmationResentMsg = "Email de confirmação reenviado."
	PasswordUpdatedMsg    = "Senha atualizada. Entre novamente."
	SignedOutMsg          = "Você saiu da sua conta."
	NoAccessMsg           = "Faça login para continuar."
)

// A Flash is one transient message shown to the user on the next render.
type Flash struct {
	Class string `json:"class"`
	Msg   string `json:"msg"`
}

var _ FlashSessionable = Session{}
