package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-quest/internal/listener"
	"github.com/pixil98/go-service"
)

type ListenerConfig struct {
	Port uint16 `json:"port"`
}

func (cl *ListenerConfig) Validate() error {
	el := errors.NewErrorList()

	if cl.Port == 0 {
		el.Add(fmt.Errorf("port must be set to a positive integer"))
	}

	return el.Err()
}

func (cl *ListenerConfig) BuildListener(cm *listener.ConnectionManager) (service.Worker, error) {
	return listener.NewWsListener(cl.Port, cm), nil
}
