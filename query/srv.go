package query

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/miekg/dns"
	"github.com/rs/zerolog/log"
)

const (
	srvService = "minecraft"
	srvProto   = "tcp"

	DefaultResolvConf = "/etc/resolv.conf"
)

var ErrNoNameserver = errors.New("no nameserver configured")

// SRVLookuper returns the SRV records of _service._proto.name.
type SRVLookuper interface {
	LookupSRV(ctx context.Context, service, proto, name string) ([]*net.SRV, error)
}

// LookupSRV looks for a _minecraft._tcp record of host and returns the
// target and port of the first one. ok is false when host is an IP address
// or when the lookup failed or found nothing; the lookup is best effort.
func LookupSRV(ctx context.Context, lookuper SRVLookuper, host string) (string, uint16, bool) {
	if lookuper == nil || isIPLiteral(host) {
		return "", 0, false
	}

	records, err := lookuper.LookupSRV(ctx, srvService, srvProto, host)
	if err != nil {
		log.Debug().Err(err).Str("host", host).Msg("SRV lookup failed")
		return "", 0, false
	}
	if len(records) == 0 {
		return "", 0, false
	}

	target := strings.TrimSuffix(records[0].Target, ".")
	if target == "" {
		return "", 0, false
	}
	log.Debug().Str("host", host).Str("target", target).Uint16("port", records[0].Port).Msg("using SRV record")
	return target, records[0].Port, true
}

func isIPLiteral(host string) bool {
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	return net.ParseIP(host) != nil
}

// DNSLookuper asks a nameserver for SRV records directly.
type DNSLookuper struct {
	// Nameserver is host:port of the server to ask. When empty the first
	// nameserver of ResolvConf is used.
	Nameserver string
	ResolvConf string
	Client     *dns.Client
}

func (l DNSLookuper) LookupSRV(ctx context.Context, service, proto, name string) ([]*net.SRV, error) {
	nameserver, err := l.nameserver()
	if err != nil {
		return nil, err
	}

	client := l.Client
	if client == nil {
		client = new(dns.Client)
	}

	qname := dns.Fqdn(fmt.Sprintf("_%s._%s.%s", service, proto, name))
	msg := new(dns.Msg)
	msg.SetQuestion(qname, dns.TypeSRV)

	resp, _, err := client.ExchangeContext(ctx, msg, nameserver)
	if err != nil {
		return nil, fmt.Errorf("srv lookup %s: %w", qname, err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("srv lookup %s: %s", qname, dns.RcodeToString[resp.Rcode])
	}

	var records []*net.SRV
	for _, rr := range resp.Answer {
		srv, ok := rr.(*dns.SRV)
		if !ok {
			continue
		}
		records = append(records, &net.SRV{
			Target:   srv.Target,
			Port:     srv.Port,
			Priority: srv.Priority,
			Weight:   srv.Weight,
		})
	}
	return records, nil
}

func (l DNSLookuper) nameserver() (string, error) {
	if l.Nameserver != "" {
		return l.Nameserver, nil
	}

	path := l.ResolvConf
	if path == "" {
		path = DefaultResolvConf
	}
	cfg, err := dns.ClientConfigFromFile(path)
	if err != nil {
		return "", err
	}
	if len(cfg.Servers) == 0 {
		return "", ErrNoNameserver
	}
	return net.JoinHostPort(cfg.Servers[0], cfg.Port), nil
}
