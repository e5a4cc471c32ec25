// Package entitlement вычисляет доступ пользователя к контенту по покупкам и подпискам
// и выдаёт права доступа по уведомлениям об оплате.
package entitlement

import (
	"sort"
	"time"

	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

// Set множество идентификаторов.
type Set map[string]struct{}

// Has сообщает, входит ли id в множество.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted возвращает элементы множества по возрастанию.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Active сообщает, даёт ли право доступ в момент now. Граница исключается:
// в момент истечения доступа уже нет.
func Active(e models.ContentEntitlement, now time.Time) bool {
	return e.AccessGranted && e.ExpiresAt.After(now)
}

// Purchased возвращает контент, купленный пользователем и доступный в момент now.
func Purchased(ents []models.ContentEntitlement, userID string, now time.Time) Set {
	set := make(Set)
	for _, e := range ents {
		if e.UserID == userID && Active(e, now) {
			set[e.ContentID] = struct{}{}
		}
	}
	return set
}

// Subscribed возвращает авторов, на которых у пользователя действующая подписка.
func Subscribed(subs []models.Subscription, userID string) Set {
	set := make(Set)
	for _, s := range subs {
		if s.UserID == userID && s.Status == models.SubscriptionActive {
			set[s.CreatorID] = struct{}{}
		}
	}
	return set
}

// CanAccess решает, доступен ли контент, и называет основание доступа.
func CanAccess(purchased, subscribed Set, c models.Content) (bool, string) {
	switch {
	case purchased.Has(c.ID):
		return true, models.AccessViaPurchase
	case subscribed.Has(c.CreatorID):
		return true, models.AccessViaSubscription
	case c.PriceCents == 0:
		return true, models.AccessViaFree
	default:
		return false, ""
	}
}
