package handler

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime/types"
)

// stringPtr creates a pointer to a string
func stringPtr(s string) *string {
	return &s
}

// uuidToString converts types.UUID to string
func uuidToString(u types.UUID) string {
	return uuid.UUID(u).String()
}

// uuidPtrToString converts an optional types.UUID
func uuidPtrToString(u *types.UUID) *string {
	if u == nil {
		return nil
	}
	s := uuidToString(*u)
	return &s
}

// validUUID reports whether s parses as a UUID
func validUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// dateToTime converts types.Date to a UTC midnight time.Time
func dateToTime(d types.Date) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// timeToDate converts time.Time to types.Date pointer
func timeToDate(t time.Time) *types.Date {
	return &types.Date{Time: t}
}

// queryLimit reads the optional limit query parameter. It answers 400 and
// returns false when the value is not an integer in [1, max].
func queryLimit(c *gin.Context, def, max int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > max {
		badRequest(c, fmt.Sprintf("limit must be between 1 and %d", max), err)
		return 0, false
	}
	return n, true
}
