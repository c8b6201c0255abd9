// Package messaging publishes reservation events to RabbitMQ.
//
// Events go to a durable topic exchange with the event type as routing key,
// so consumers can bind to "reservation.*" or to a single type such as
// "reservation.promoted".
package messaging
