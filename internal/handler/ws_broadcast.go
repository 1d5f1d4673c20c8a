package handler

// BroadcastRoomEvent implements service.Broadcaster using the WebSocket hub.
func (h *Hub) BroadcastRoomEvent(roomID string, eventType string, data any) {
	h.BroadcastToRoom(roomID, WSEvent{
		Type:   eventType,
		RoomID: roomID,
		Data:   data,
	})
}
