package snmp

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/sirupsen/logrus"
)

const (
	oidIfDescr       = ".1.3.6.1.2.1.2.2.1.2"
	oidIfAdminStatus = ".1.3.6.1.2.1.2.2.1.7"

	adminStatusDown = 2

	DefaultPort    = 161
	DefaultTimeout = 5 * time.Second
)

// Walker is the subset of gosnmp used to read a table column
type Walker interface {
	BulkWalkAll(rootOid string) ([]gosnmp.SnmpPDU, error)
}

// Verifier reads IF-MIB ifAdminStatus to confirm interfaces were shut down
type Verifier struct {
	target    string
	community string
	port      uint16
	timeout   time.Duration
	logger    logrus.FieldLogger
	connect   func(ctx context.Context) (Walker, func() error, error)
}

// NewVerifier creates an SNMPv2c verifier for target
func NewVerifier(target, community string, logger logrus.FieldLogger) *Verifier {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	v := &Verifier{
		target:    target,
		community: community,
		port:      DefaultPort,
		timeout:   DefaultTimeout,
		logger:    logger.WithField("target", target),
	}
	v.connect = v.dial
	return v
}

func (v *Verifier) dial(ctx context.Context) (Walker, func() error, error) {
	client := &gosnmp.GoSNMP{
		Target:    v.target,
		Port:      v.port,
		Community: v.community,
		Version:   gosnmp.Version2c,
		Timeout:   v.timeout,
		Retries:   1,
		Transport: "udp",
		Context:   ctx,
	}
	if err := client.Connect(); err != nil {
		return nil, nil, fmt.Errorf("snmp connect %s: %w", v.target, err)
	}
	return client, client.Conn.Close, nil
}

// VerifyDown returns the interfaces whose admin status is not down.
// Interfaces missing from ifDescr are logged and left out.
func (v *Verifier) VerifyDown(ctx context.Context, interfaces []string) ([]string, error) {
	walker, closeFn, err := v.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := closeFn(); err != nil {
			v.logger.WithError(err).Debug("Failed to close SNMP connection")
		}
	}()

	descrs, err := walker.BulkWalkAll(oidIfDescr)
	if err != nil {
		return nil, fmt.Errorf("walk ifDescr: %w", err)
	}
	statuses, err := walker.BulkWalkAll(oidIfAdminStatus)
	if err != nil {
		return nil, fmt.Errorf("walk ifAdminStatus: %w", err)
	}

	indexByName := make(map[string]int, len(descrs))
	for _, pdu := range descrs {
		if pdu.Type != gosnmp.OctetString {
			continue
		}
		if index, ok := ifIndex(pdu.Name); ok {
			indexByName[strings.ToLower(string(pdu.Value.([]byte)))] = index
		}
	}
	statusByIndex := make(map[int]int64, len(statuses))
	for _, pdu := range statuses {
		if pdu.Type != gosnmp.Integer {
			continue
		}
		if index, ok := ifIndex(pdu.Name); ok {
			statusByIndex[index] = gosnmp.ToBigInt(pdu.Value).Int64()
		}
	}

	var stillUp []string
	for _, name := range interfaces {
		index, ok := indexByName[strings.ToLower(name)]
		if !ok {
			v.logger.WithField("interface", name).Warn("Interface not found in ifDescr")
			continue
		}
		status, ok := statusByIndex[index]
		if !ok {
			v.logger.WithField("interface", name).Warn("No ifAdminStatus for interface")
			continue
		}
		if status != adminStatusDown {
			stillUp = append(stillUp, name)
		}
	}
	return stillUp, nil
}

// ifIndex extracts the trailing index from a column OID
func ifIndex(oid string) (int, bool) {
	dot := strings.LastIndex(oid, ".")
	if dot < 0 {
		return 0, false
	}
	index, err := strconv.Atoi(oid[dot+1:])
	if err != nil {
		return 0, false
	}
	return index, true
}
