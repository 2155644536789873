package bmc

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/dynfan/dynfan/internal/configuration"
	"github.com/dynfan/dynfan/internal/ui"
	"golang.org/x/crypto/ssh"
)

// Transport abstracts the remote command channel to the management
// controller, so the command layer can be exercised against fakes.
type Transport interface {
	Run(command string) (string, error)
	Close() error
}

// Session is a long-lived SSH connection to the out-of-band controller.
// It is dialed lazily, kept warm to amortize the handshake latency, and
// redialed transparently after a transport error.
type Session struct {
	config configuration.BmcConfig

	mu     sync.Mutex
	client *ssh.Client
}

func NewSession(config configuration.BmcConfig) *Session {
	return &Session{
		config: config,
	}
}

func (s *Session) Run(command string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	client, err := s.ensureClient()
	if err != nil {
		return "", err
	}

	session, err := client.NewSession()
	if err != nil {
		// the warm connection went stale, redial once
		s.drop()
		client, err = s.ensureClient()
		if err != nil {
			return "", err
		}
		session, err = client.NewSession()
		if err != nil {
			s.drop()
			return "", err
		}
	}
	defer func() {
		_ = session.Close()
	}()

	out, err := session.CombinedOutput(command)
	if err != nil {
		s.drop()
		return string(out), err
	}
	return string(out), nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

func (s *Session) ensureClient() (*ssh.Client, error) {
	if s.client != nil {
		return s.client, nil
	}

	if len(s.config.Address) <= 0 {
		return nil, fmt.Errorf("no management controller address configured")
	}

	address := s.config.Address
	if !strings.Contains(address, ":") {
		address = address + ":22"
	}

	auth, err := s.authMethods()
	if err != nil {
		return nil, err
	}

	clientConfig := &ssh.ClientConfig{
		User: s.config.Username,
		Auth: auth,
		// management controllers ship self-signed, frequently regenerated keys
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         s.config.ConnectTimeout,
	}
	// older controller firmware only offers legacy algorithms
	clientConfig.KeyExchanges = append(clientConfig.KeyExchanges,
		"diffie-hellman-group14-sha1", "diffie-hellman-group1-sha1")
	clientConfig.Ciphers = append(clientConfig.Ciphers,
		"aes128-cbc", "3des-cbc")

	ui.Debug("Dialing management controller at %s", address)
	client, err := ssh.Dial("tcp", address, clientConfig)
	if err != nil {
		return nil, err
	}

	s.client = client
	return client, nil
}

func (s *Session) authMethods() ([]ssh.AuthMethod, error) {
	if len(s.config.KeyFile) > 0 {
		key, err := os.ReadFile(s.config.KeyFile)
		if err != nil {
			return nil, err
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, err
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	}
	return []ssh.AuthMethod{ssh.Password(s.config.Password)}, nil
}

func (s *Session) drop() {
	if s.client != nil {
		_ = s.client.Close()
		s.client = nil
	}
}
