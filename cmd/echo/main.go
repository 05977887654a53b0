// Copyright 2024 tobyzxj
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command echo is the simplest transport collaborator named in spec §6:
// bind a local datagram endpoint, log every received datagram as UTF-8,
// and forward it unchanged to the peer.
package main

import (
	"log"
	"net"
	"os"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if len(os.Args) != 3 {
		log.Printf("Usage: %s <local_addr> <peer_addr>", os.Args[0])
		os.Exit(1)
	}
	localAddr, peerAddr := os.Args[1], os.Args[2]

	local, err := net.ResolveUnixAddr("unixgram", localAddr)
	if err != nil {
		log.Fatalf("resolving local address %q: %v", localAddr, err)
	}
	peer, err := net.ResolveUnixAddr("unixgram", peerAddr)
	if err != nil {
		log.Fatalf("resolving peer address %q: %v", peerAddr, err)
	}

	conn, err := net.ListenUnixgram("unixgram", local)
	if err != nil {
		log.Fatalf("binding %q: %v", localAddr, err)
	}
	defer conn.Close()

	buf := make([]byte, 1024)
	for {
		n, from, err := conn.ReadFromUnix(buf)
		if err != nil {
			log.Printf("read error: %v", err)
			continue
		}
		log.Printf("Received %q from %v", buf[:n], from)

		if _, err := conn.WriteToUnix(buf[:n], peer); err != nil {
			log.Printf("write error: %v", err)
		}
	}
}
