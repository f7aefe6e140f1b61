// Package notify описывает события, которые use case'ы отправляют пользователям
// после фиксации транзакции. Доставка best-effort и не влияет на результат команды.
package notify

import "sync"

const (
	EventEnrollmentCreated   = "enrollment_created"
	EventEnrollmentCancelled = "enrollment_cancelled"
	EventPaymentSubmitted    = "payment_submitted"
	EventPaymentApproved     = "payment_approved"
	EventPaymentRejected     = "payment_rejected"
	EventWalletCredited      = "wallet_credited"
	EventWithdrawalRequested = "withdrawal_requested"
	EventWithdrawalApproved  = "withdrawal_approved"
	EventWithdrawalRejected  = "withdrawal_rejected"
	EventPaymentWindowOpened = "payment_window_opened"
)

// Notifier доставляет событие всем подключениям пользователя с данным email.
type Notifier interface {
	Notify(email, event string, data any)
}

// Nop отбрасывает события.
type Nop struct{}

func (Nop) Notify(string, string, any) {}

// Event одно отправленное событие.
type Event struct {
	Email string
	Type  string
	Data  any
}

// Recorder запоминает события, удобен в тестах.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Notify(email, event string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Email: email, Type: event, Data: data})
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types список типов событий для email в порядке отправки.
func (r *Recorder) Types(email string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0)
	for _, e := range r.events {
		if e.Email == email {
			types = append(types, e.Type)
		}
	}
	return types
}
