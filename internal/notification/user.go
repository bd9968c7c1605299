package notification

import (
	"context"
	"log"

	"request-approval-backend/internal/push"
)

// ReasonMissingToken is reported when a request has no device token to
// notify. Absence of a token is not an error condition.
const ReasonMissingToken = "missing-fcm-token"

// Texts of the decision notification shown on the requester's device.
const (
	approvedTitle = "신청 승인"
	approvedBody  = "이 알림을 클릭해 PDF를 달라고 하세요."
	rejectedTitle = "신청 거부"
	rejectedBody  = "당신의 신청이 거부되었습니다."
)

// UserNotifyOutcome summarizes one targeted decision notification.
type UserNotifyOutcome struct {
	Success  bool   `json:"success"`
	Skipped  bool   `json:"skipped,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Error    string `json:"error,omitempty"`
	Approved bool   `json:"approvedStatus"`
	Response string `json:"response,omitempty"`
}

// NotifyRequester sends a single approval or rejection notification to
// the device token stored on one request. The caller proceeds with its
// own response whatever the outcome; nothing here is fatal.
func (n *Notifier) NotifyRequester(ctx context.Context, requestID int64, approved bool) UserNotifyOutcome {
	record, err := n.store.GetRequest(ctx, requestID)
	if err != nil {
		return UserNotifyOutcome{Success: false, Error: "record-not-found", Approved: approved}
	}

	if record.PushToken == "" {
		return UserNotifyOutcome{Success: true, Skipped: true, Reason: ReasonMissingToken, Approved: approved}
	}

	title, body := rejectedTitle, rejectedBody
	if approved {
		title, body = approvedTitle, approvedBody
	}

	callCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	response, err := n.gateway.Send(callCtx, push.Message{
		Token:        record.PushToken,
		Notification: push.Notification{Title: title, Body: body},
	})
	if err != nil {
		log.Printf("notify: failed to reach requester of request %d: %v", requestID, err)
		return UserNotifyOutcome{Success: false, Error: err.Error(), Approved: approved}
	}

	return UserNotifyOutcome{Success: true, Approved: approved, Response: response}
}
