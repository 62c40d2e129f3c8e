package notify

import (
	"fmt"

	"github.com/euromart/storefront-notify/internal/orders"
)

// DefaultLanguage is the fallback locale for every rendered text.
const DefaultLanguage = "uz"

// Text is the rendered user-facing content for one (status, language) pair.
// Label is the short status line used in Telegram receipts; Description is
// the status-specific sentence that follows it.
type Text struct {
	Title       string
	Body        string
	Label       string
	Description string
}

// statusTexts is the single shared status x language table. Both the
// dispatcher and the Telegram relay render from here so the two surfaces
// cannot drift apart. Body strings take the order number via %s.
var statusTexts = map[orders.Status]map[string]Text{
	orders.StatusPending: {
		"uz": {
			Title:       "Buyurtma qabul qilindi",
			Body:        "Buyurtmangiz %s qabul qilindi va tez orada ko'rib chiqiladi.",
			Label:       "Qabul qilindi",
			Description: "Buyurtmangiz qabul qilindi, operatorlarimiz uni ko'rib chiqmoqda.",
		},
		"ru": {
			Title:       "Заказ принят",
			Body:        "Ваш заказ %s принят и скоро будет рассмотрен.",
			Label:       "Принят",
			Description: "Ваш заказ принят, наши операторы его обрабатывают.",
		},
		"en": {
			Title:       "Order received",
			Body:        "Your order %s has been received and will be reviewed shortly.",
			Label:       "Received",
			Description: "Your order has been received and is being reviewed.",
		},
	},
	orders.StatusConfirmed: {
		"uz": {
			Title:       "Buyurtma tasdiqlandi",
			Body:        "Buyurtmangiz %s tasdiqlandi. Tez orada tayyorlashni boshlaymiz.",
			Label:       "Tasdiqlandi",
			Description: "Buyurtmangiz tasdiqlandi va ishga qabul qilindi.",
		},
		"ru": {
			Title:       "Заказ подтверждён",
			Body:        "Ваш заказ %s подтверждён. Скоро мы начнём его собирать.",
			Label:       "Подтверждён",
			Description: "Ваш заказ подтверждён и принят в работу.",
		},
		"en": {
			Title:       "Order confirmed",
			Body:        "Your order %s has been confirmed. We will start preparing it soon.",
			Label:       "Confirmed",
			Description: "Your order has been confirmed and accepted.",
		},
	},
	orders.StatusProcessing: {
		"uz": {
			Title:       "Buyurtma tayyorlanmoqda",
			Body:        "Buyurtmangiz %s hozir tayyorlanmoqda.",
			Label:       "Tayyorlanmoqda",
			Description: "Buyurtmangiz omborda yig'ilmoqda.",
		},
		"ru": {
			Title:       "Заказ собирается",
			Body:        "Ваш заказ %s сейчас собирается.",
			Label:       "Собирается",
			Description: "Ваш заказ комплектуется на складе.",
		},
		"en": {
			Title:       "Order in progress",
			Body:        "Your order %s is being prepared.",
			Label:       "In progress",
			Description: "Your order is being assembled at the warehouse.",
		},
	},
	orders.StatusReady: {
		"uz": {
			Title:       "Buyurtma tayyor",
			Body:        "Buyurtmangiz %s tayyor. Yetkazib berishga topshirilmoqda.",
			Label:       "Tayyor",
			Description: "Buyurtmangiz tayyor va yetkazib berishni kutmoqda.",
		},
		"ru": {
			Title:       "Заказ готов",
			Body:        "Ваш заказ %s готов и передаётся в доставку.",
			Label:       "Готов",
			Description: "Ваш заказ готов и ожидает передачи курьеру.",
		},
		"en": {
			Title:       "Order ready",
			Body:        "Your order %s is ready and being handed to delivery.",
			Label:       "Ready",
			Description: "Your order is ready and awaiting the courier.",
		},
	},
	orders.StatusShipped: {
		"uz": {
			Title:       "Buyurtma yo'lda",
			Body:        "Buyurtmangiz %s kuryerga topshirildi va yo'lda.",
			Label:       "Yo'lda",
			Description: "Kuryer buyurtmangizni olib yo'lga chiqdi.",
		},
		"ru": {
			Title:       "Заказ в пути",
			Body:        "Ваш заказ %s передан курьеру и уже в пути.",
			Label:       "В пути",
			Description: "Курьер выехал с вашим заказом.",
		},
		"en": {
			Title:       "Order on the way",
			Body:        "Your order %s has been handed to the courier and is on the way.",
			Label:       "On the way",
			Description: "The courier is on the way with your order.",
		},
	},
	orders.StatusDelivered: {
		"uz": {
			Title:       "Buyurtma yetkazildi",
			Body:        "Buyurtmangiz %s yetkazib berildi. Xaridingiz uchun rahmat!",
			Label:       "Yetkazildi",
			Description: "Buyurtmangiz manzilga yetkazib berildi.",
		},
		"ru": {
			Title:       "Заказ доставлен",
			Body:        "Ваш заказ %s доставлен. Спасибо за покупку!",
			Label:       "Доставлен",
			Description: "Ваш заказ доставлен по адресу.",
		},
		"en": {
			Title:       "Order delivered",
			Body:        "Your order %s has been delivered. Thank you for shopping with us!",
			Label:       "Delivered",
			Description: "Your order has been delivered to the address.",
		},
	},
	orders.StatusCancelled: {
		"uz": {
			Title:       "Buyurtma bekor qilindi",
			Body:        "Buyurtmangiz %s bekor qilindi. Savollar uchun biz bilan bog'laning.",
			Label:       "Bekor qilindi",
			Description: "Buyurtmangiz bekor qilindi.",
		},
		"ru": {
			Title:       "Заказ отменён",
			Body:        "Ваш заказ %s отменён. Свяжитесь с нами при возникновении вопросов.",
			Label:       "Отменён",
			Description: "Ваш заказ был отменён.",
		},
		"en": {
			Title:       "Order cancelled",
			Body:        "Your order %s has been cancelled. Contact us if you have questions.",
			Label:       "Cancelled",
			Description: "Your order has been cancelled.",
		},
	},
}

// TextFor returns the rendered title/body/label for a status in the
// requested language. Unsupported languages fall back to Uzbek; an unknown
// status falls back to a generic update message that still carries the
// literal order number.
func TextFor(status orders.Status, language, orderNumber string) Text {
	byLang, ok := statusTexts[status]
	if !ok {
		return Text{
			Title:       "Buyurtma holati yangilandi",
			Body:        fmt.Sprintf("Buyurtma %s holati yangilandi.", orderNumber),
			Label:       string(status),
			Description: fmt.Sprintf("Buyurtma %s holati yangilandi.", orderNumber),
		}
	}
	text, ok := byLang[language]
	if !ok {
		text = byLang[DefaultLanguage]
	}
	text.Body = fmt.Sprintf(text.Body, orderNumber)
	return text
}
