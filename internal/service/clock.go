package service

import "time"

// displayTimeLayout renders audit timestamps for people.
const displayTimeLayout = "2006-01-02 15:04:05.000000"

// unixSeconds returns t as fractional Unix seconds.
func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func utcNow() time.Time {
	return time.Now().UTC()
}
