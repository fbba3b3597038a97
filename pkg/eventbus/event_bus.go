package eventbus

import (
	"reflect"

	"github.com/sirupsen/logrus"
)

// EventBus is an in-process publish/subscribe bus. Handlers are plain
// functions; a published event is delivered to every subscriber whose
// parameter list matches the event's types.
type EventBus interface {
	Publish(args ...interface{})
	Subscribe(handler interface{})
	Unsubscribe(handler interface{})
	SubscribersCount() int
}

type publisherImpl struct {
	log         *logrus.Logger
	subscribers []interface{}
}

func NewEventPublisher(log *logrus.Logger) EventBus {
	return &publisherImpl{log: log}
}

// MatchSignature reports whether handler (a func) accepts exactly the given
// argument list, honoring interface parameters.
func MatchSignature(handler interface{}, args []interface{}) bool {
	t := reflect.TypeOf(handler)
	if t.Kind() != reflect.Func || t.NumIn() != len(args) {
		return false
	}
	for i, arg := range args {
		paramType := t.In(i)
		if arg == nil {
			if paramType.Kind() != reflect.Interface && paramType.Kind() != reflect.Ptr {
				return false
			}
			continue
		}
		argType := reflect.TypeOf(arg)
		if paramType.Kind() == reflect.Interface {
			if !argType.Implements(paramType) {
				return false
			}
			continue
		}
		if !argType.AssignableTo(paramType) {
			return false
		}
	}
	return true
}

func (p *publisherImpl) Publish(args ...interface{}) {
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		in[i] = reflect.ValueOf(arg)
	}

	handled := false
	for _, handler := range p.subscribers {
		if !MatchSignature(handler, args) {
			continue
		}
		v := reflect.ValueOf(handler)
		func() {
			defer func() {
				if r := recover(); r != nil {
					if p.log != nil {
						p.log.Errorf("eventbus: handler %s panicked with args %v: %v", v.Type().String(), args, r)
					}
				}
			}()
			v.Call(in)
			handled = true
		}()
	}

	if !handled && p.log != nil {
		p.log.Warnf("eventbus.Publish: no matching subscribers for event with args: %v", in)
	}
}

func (p *publisherImpl) Subscribe(handler interface{}) {
	if reflect.TypeOf(handler).Kind() != reflect.Func {
		panic("handler must be a function")
	}
	p.subscribers = append(p.subscribers, handler)
}

func (p *publisherImpl) Unsubscribe(handler interface{}) {
	ptr := reflect.ValueOf(handler).Pointer()
	for i, subscribed := range p.subscribers {
		if reflect.ValueOf(subscribed).Pointer() == ptr {
			p.subscribers = append(p.subscribers[:i], p.subscribers[i+1:]...)
			return
		}
	}
}

func (p *publisherImpl) SubscribersCount() int {
	return len(p.subscribers)
}
