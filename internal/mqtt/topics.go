package mqtt

// Bus topics. Telemetry arrives on the state topics; commands and
// normalized location events go out on TopicCmd and TopicGPS.
const (
	TopicCmd      = "home/garage/cmd"
	TopicDoor     = "home/garage/door"
	TopicGPS      = "home/garage/user_location"
	TopicPIR      = "home/garage/pir"
	TopicObstacle = "home/garage/obstacle"
)

// StateTopics lists every topic the telemetry consumer subscribes to.
func StateTopics() []string {
	return []string{TopicDoor, TopicGPS, TopicPIR, TopicObstacle}
}
