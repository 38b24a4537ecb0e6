package main

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"nrf24.dev"
)

var serveFlags struct {
	listen string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Bridge the radio to WebSocket clients",
	Long: `Serve exposes the radio at ws://<listen>/ws. Binary messages from any
client are transmitted as packets; every received packet is fanned out
to all clients as a binary message.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, closer, err := openRadio()
		if err != nil {
			return err
		}
		defer closer()
		b := &bridge{
			radio:   r,
			clients: make(map[*websocket.Conn]chan []byte),
		}
		go b.pollLoop()
		http.HandleFunc("/ws", b.handle)
		log.Printf("listening on %s", serveFlags.listen)
		return http.ListenAndServe(serveFlags.listen, nil)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveFlags.listen, "listen", "l", ":8724", "listen address")
	rootCmd.AddCommand(serveCmd)
}

// bridge serializes all radio access behind mu; the driver itself is
// single-owner.
type bridge struct {
	mu      sync.Mutex
	radio   *nrf24.Radio
	clients map[*websocket.Conn]chan []byte
}

var upgrader = websocket.Upgrader{
	// The bridge runs on trusted lab networks.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (b *bridge) handle(w http.ResponseWriter, req *http.Request) {
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Printf("upgrade: %v", err)
		return
	}
	out := make(chan []byte, 16)
	b.mu.Lock()
	b.clients[conn] = out
	b.mu.Unlock()
	log.Printf("client %s connected", req.RemoteAddr)

	go func() {
		for packet := range out {
			if err := conn.WriteMessage(websocket.BinaryMessage, packet); err != nil {
				return
			}
		}
	}()
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		if err := b.transmit(data); err != nil {
			log.Printf("client %s: %v", req.RemoteAddr, err)
			break
		}
	}
	b.mu.Lock()
	delete(b.clients, conn)
	b.mu.Unlock()
	close(out)
	conn.Close()
	log.Printf("client %s disconnected", req.RemoteAddr)
}

func (b *bridge) transmit(packet []byte) error {
	if len(packet) == 0 || len(packet) > nrf24.MaxPayload {
		return fmt.Errorf("packet is %d bytes, want 1-%d", len(packet), nrf24.MaxPayload)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.radio.Send(packet); err != nil {
		return err
	}
	return b.radio.WaitEmpty()
}

// pollLoop drains the RX FIFO and fans packets out to every client.
func (b *bridge) pollLoop() {
	for {
		b.mu.Lock()
		var packets [][]byte
		for {
			_, ok, err := b.radio.CanRead()
			if err != nil || !ok {
				break
			}
			p, err := b.radio.Read()
			if err != nil {
				break
			}
			packets = append(packets, append([]byte(nil), p.Bytes()...))
		}
		for _, packet := range packets {
			for _, out := range b.clients {
				select {
				case out <- packet:
				default: // drop for slow clients
				}
			}
		}
		b.mu.Unlock()
		time.Sleep(2 * time.Millisecond)
	}
}
