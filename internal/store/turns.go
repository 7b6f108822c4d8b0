package store

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"qms/core-api/internal/models"
)

// StatusTableCodes are the TURN status codes shown on the board, in display order.
var StatusTableCodes = []string{models.TurnStatusBeingAttended, models.TurnStatusToBeAttended}

// WaitingCodes are the TURN status codes counted as "people in queue".
var WaitingCodes = []string{models.TurnStatusPending, models.TurnStatusToBeAttended}

var turnTransitions = map[string][]string{
	models.TurnStatusPending:       {models.TurnStatusToBeAttended, models.TurnStatusBeingAttended, models.TurnStatusCancelled},
	models.TurnStatusToBeAttended:  {models.TurnStatusPending, models.TurnStatusBeingAttended, models.TurnStatusCancelled},
	models.TurnStatusBeingAttended: {models.TurnStatusToBeAttended, models.TurnStatusAttended, models.TurnStatusCancelled},
	models.TurnStatusAttended:      {},
	models.TurnStatusCancelled:     {},
}

// ValidTurnTransition reports whether a turn may move from one status code to
// another. Codes outside the built-in lifecycle are operator defined and are
// not restricted, except that a terminal status is never left.
func ValidTurnTransition(from, to string) bool {
	if from == to {
		return true
	}
	allowed, known := turnTransitions[from]
	if !known {
		return true
	}
	if _, target := turnTransitions[to]; !target {
		return len(allowed) > 0
	}
	for _, code := range allowed {
		if code == to {
			return true
		}
	}
	return false
}

// CheckStatusType is the comparison half of status type validation.
func CheckStatusType(status models.Status, expected models.StatusType) error {
	if status.Type != string(expected) {
		return fmt.Errorf("%w: status %d is %s, expected %s", ErrInvalidStatusType, status.ID, status.Type, expected)
	}
	return nil
}

func FormatTicketNumber(prefix string, number int64) string {
	return fmt.Sprintf("%s-%d", prefix, number)
}

// ticketSequence extracts the trailing running number of a ticket, or -1.
func ticketSequence(ticketNumber string) int64 {
	idx := strings.LastIndex(ticketNumber, "-")
	if idx < 0 || idx == len(ticketNumber)-1 {
		return -1
	}
	n, err := strconv.ParseInt(ticketNumber[idx+1:], 10, 64)
	if err != nil {
		return -1
	}
	return n
}

// SortTurnStatuses orders board rows by display status, then by running number.
func SortTurnStatuses(rows []models.TurnStatus) {
	rank := make(map[string]int, len(StatusTableCodes))
	for i, code := range StatusTableCodes {
		rank[code] = i
	}
	sort.SliceStable(rows, func(i, j int) bool {
		ri, rj := rank[rows[i].StatusCode], rank[rows[j].StatusCode]
		if ri != rj {
			return ri < rj
		}
		si, sj := ticketSequence(rows[i].TicketNumber), ticketSequence(rows[j].TicketNumber)
		if si != sj {
			return si < sj
		}
		return rows[i].TicketNumber < rows[j].TicketNumber
	})
}
