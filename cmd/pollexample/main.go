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

// Command pollexample is the second transport collaborator named in
// spec §6: a non-blocking datagram socket watched with poll(2) instead
// of a blocking read loop, on the same one-second cadence a deployed
// datapath uses for its own measurement tick.
package main

import (
	"fmt"
	"log"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "Usage: %s <local_addr> <peer_addr>\n", os.Args[0])
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

	file, err := conn.File()
	if err != nil {
		log.Fatalf("getting raw fd: %v", err)
	}
	defer file.Close()
	fd := int(file.Fd())

	if err := unix.SetNonblock(fd, true); err != nil {
		log.Fatalf("setting nonblocking: %v", err)
	}

	recvBuf := make([]byte, 1024)
	sendBuf := []byte("Hello world!")

	for {
		fds := []unix.PollFd{
			{Fd: int32(fd), Events: unix.POLLIN},
			{Fd: int32(fd), Events: unix.POLLOUT},
		}

		if _, err := unix.Poll(fds, -1); err != nil {
			log.Fatalf("poll: %v", err)
		}

		if fds[0].Revents&unix.POLLIN != 0 {
			fmt.Println("POLLIN event")
			n, from, err := conn.ReadFromUnix(recvBuf)
			if err != nil {
				log.Printf("read error: %v", err)
			} else {
				fmt.Printf("Received %q from %v\n", recvBuf[:n], from)
			}
		}

		if fds[1].Revents&unix.POLLOUT != 0 {
			fmt.Println("POLLOUT event")
			if _, err := conn.WriteToUnix(sendBuf, peer); err != nil {
				log.Printf("write error: %v", err)
			} else {
				fmt.Printf("Sent %q to %v\n", sendBuf, peerAddr)
			}
		}

		time.Sleep(1 * time.Second)
	}
}
