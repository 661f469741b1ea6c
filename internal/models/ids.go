// ABOUTME: Identifier generation shared by all dashboard entities
// ABOUTME: IDs carry a type prefix and a creation timestamp for readable keys
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// newID generates a unique identifier such as "wh_20260101_120000_1a2b3c4d"
func newID(prefix string) string {
	return fmt.Sprintf("%s_%s_%s", prefix, time.Now().Format("20060102_150405"), uuid.New().String()[:8])
}
