package relay

// Room keys are deterministic so every participant lands in the same room no
// matter who computed the key.

const serviceRoomPrefix = "service_"

// PairRoomKey is order-independent: the two user ids are sorted
// lexicographically and joined, so PairRoomKey(a, b) == PairRoomKey(b, a).
func PairRoomKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "_" + b
}

// ServiceRoomKey names the broadcast room for one service's review stream.
func ServiceRoomKey(serviceID string) string {
	return serviceRoomPrefix + serviceID
}
