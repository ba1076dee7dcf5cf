package models

// MessageType tags every outbound subscriber message. The set is closed:
// anything a subscriber can receive is one of these.
type MessageType string

const (
	MessageInitial MessageType = "initial"
	MessageUpdate  MessageType = "update"
	MessageDetails MessageType = "details"
	MessageWhales  MessageType = "whales"
	MessageSignals MessageType = "signals"
	MessageError   MessageType = "error"
	MessageHelp    MessageType = "help"
)

// Outbound is one server-to-subscriber message.
type Outbound struct {
	Type MessageType `json:"type"`
	Data interface{} `json:"data"`
}

// Snapshot is the full view sent once per new connection.
type Snapshot struct {
	Market    []MarketAsset    `json:"marketData"`
	Sentiment SentimentReading `json:"fearGreed"`
	Whales    []WhaleTransfer  `json:"whales"`
	Chains    []ChainMetric    `json:"chainActivity"`
	News      []NewsItem       `json:"news"`
	Signals   []Signal         `json:"signals"`
}

// Update is the delta pushed on every broadcast tick.
type Update struct {
	Market    []MarketAsset    `json:"marketData"`
	Sentiment SentimentReading `json:"fearGreed"`
	Signals   []Signal         `json:"signals"`
	Timestamp int64            `json:"timestamp"` // unix milliseconds
}

// HelpCatalogue lists the recognized subscriber commands.
type HelpCatalogue struct {
	Commands []string `json:"commands"`
}

// Command is one client-to-server request.
type Command struct {
	Command string       `json:"command"`
	Args    *CommandArgs `json:"args,omitempty"`
}

// CommandArgs carries optional command arguments.
type CommandArgs struct {
	Symbol string `json:"symbol"`
}

// --- Outbound constructors (the closed union's only producers) ---

func InitialMessage(s *Snapshot) Outbound { return Outbound{Type: MessageInitial, Data: s} }

func UpdateMessage(u *Update) Outbound { return Outbound{Type: MessageUpdate, Data: u} }

// DetailsMessage carries a nil asset when no match was found; absence is
// a result, not an error.
func DetailsMessage(a *MarketAsset) Outbound { return Outbound{Type: MessageDetails, Data: a} }

func WhalesMessage(ws []WhaleTransfer) Outbound { return Outbound{Type: MessageWhales, Data: ws} }

func SignalsMessage(ss []Signal) Outbound { return Outbound{Type: MessageSignals, Data: ss} }

func ErrorMessage(msg string) Outbound { return Outbound{Type: MessageError, Data: msg} }

func HelpMessage() Outbound {
	return Outbound{Type: MessageHelp, Data: HelpCatalogue{Commands: []string{
		"refresh - Refresh all data",
		"details <symbol> - Get detailed info for a crypto",
		"whales - Show recent whale transactions",
		"signals - Show current market signals",
		"clear - Clear terminal",
		"help - Show this help message",
	}}}
}
