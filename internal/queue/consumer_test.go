package queue

import (
    "encoding/json"
    "os"
    "path/filepath"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestHandleMessageAppendsLogLine(t *testing.T) {
    t.Chdir(t.TempDir())

    ev := BookingConfirmedEvent{
        BookingID:        "b-1",
        BookingReference: "BF-ABCD2345",
        TripID:           "trip-1",
        RouteFrom:        "Vienna",
        RouteTo:          "Graz",
        DepartureTime:    "2025-06-01T08:00:00Z",
        PassengerName:    "Ada Lovelace",
        PassengerEmail:   "ada@example.com",
        SeatNumbers:      []string{"1A", "1B"},
        TotalAmount:      "220.00",
        ConfirmedAt:      "2025-05-20T10:00:00Z",
    }
    body, err := json.Marshal(ev)
    require.NoError(t, err)

    require.NoError(t, handleMessage(body))
    require.NoError(t, handleMessage(body)) // appends, never truncates

    data, err := os.ReadFile(filepath.Join("logs", "booking.log"))
    require.NoError(t, err)
    content := string(data)
    assert.Contains(t, content, "BF-ABCD2345")
    assert.Contains(t, content, "Vienna->Graz")
    assert.Contains(t, content, "[1A,1B]")
    assert.Equal(t, 2, countLines(content))
}

func countLines(s string) int {
    n := 0
    for _, r := range s {
        if r == '\n' {
            n++
        }
    }
    return n
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
    t.Chdir(t.TempDir())
    assert.Error(t, handleMessage([]byte("not json")))
}
