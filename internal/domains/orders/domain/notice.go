package domain

import shipdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"

// NoticeCode classifies a checkout validation notice.
type NoticeCode string

const (
	NoticeMissingCarrier NoticeCode = "missing_carrier"
	NoticeMissingCustom  NoticeCode = "missing_custom"
)

var noticeMessages = map[NoticeCode]string{
	NoticeMissingCarrier: "Por favor seleccione o ingrese un transportista.",
	NoticeMissingCustom:  "Por favor especifique el transportista personalizado.",
}

// Notice is a blocking checkout error shown to the customer.
type Notice struct {
	Code     NoticeCode            `json:"code"`
	Instance shipdomain.InstanceID `json:"instanceId"`
	Message  string                `json:"message"`
}

// NewNotice builds a notice with its customer-facing message.
func NewNotice(code NoticeCode, instance shipdomain.InstanceID) Notice {
	return Notice{Code: code, Instance: instance, Message: noticeMessages[code]}
}
