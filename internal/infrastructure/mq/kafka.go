package mq

import (
	"encoding/json"
	"log"

	"gameportal/internal/config"

	"github.com/IBM/sarama"
)

// Producer 审核事件生产者
// 充值提交和 GM 审核结果会发到 Kafka，供发货、对账等下游消费。
// 发事件是尽力而为：发送失败只记日志，不影响请求本身的结果。
type Producer struct {
	producer sarama.SyncProducer
	topics   config.KafkaTopicConfig
}

// NewProducer 创建生产者，配置里未启用时返回 nil（各方法对 nil 安全）
func NewProducer(cfg *config.KafkaConfig) *Producer {
	if !cfg.Enabled {
		log.Println("Kafka 未启用，审核事件不外发")
		return nil
	}

	kafkaConfig := sarama.NewConfig()
	kafkaConfig.Producer.RequiredAcks = sarama.WaitForAll
	kafkaConfig.Producer.Retry.Max = 3
	kafkaConfig.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(cfg.Brokers, kafkaConfig)
	if err != nil {
		log.Fatalf("创建 Kafka 生产者失败: %v", err)
	}

	log.Println("Kafka 生产者创建成功")
	return &Producer{producer: producer, topics: cfg.Topic}
}

// PublishSubmitted 发布“新登记已提交”事件
func (p *Producer) PublishSubmitted(payload interface{}) {
	if p == nil {
		return
	}
	p.send(p.topics.RechargeSubmitted, payload)
}

// PublishReview 发布“审核状态已变更”事件
func (p *Producer) PublishReview(payload interface{}) {
	if p == nil {
		return
	}
	p.send(p.topics.RechargeReview, payload)
}

func (p *Producer) send(topic string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[MQ] 序列化事件失败: %v", err)
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(data),
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		log.Printf("[MQ] 发送事件失败 topic=%s: %v", topic, err)
	}
}

// Close 关闭生产者
func (p *Producer) Close() {
	if p == nil {
		return
	}
	if err := p.producer.Close(); err != nil {
		log.Printf("[MQ] 关闭生产者失败: %v", err)
	}
}
