package notify

// Rooms are the pub/sub addresses clients subscribe to. Channel name on the
// wire is "room:" + room id.
const RoomOnlineAgents = "agents:online"

func CustomerRoom(customerID string) string {
	return "customer:" + customerID
}

func BusinessRoom(businessID string) string {
	return "business:" + businessID
}

func AgentRoom(agentID string) string {
	return "agent:" + agentID
}
