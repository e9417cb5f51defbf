package cloud

func copyMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

// DeepCopy returns an independent copy.
func (in *HealthCheck) DeepCopy() *HealthCheck {
	if in == nil {
		return nil
	}
	out := *in
	out.Labels = copyMap(in.Labels)
	return &out
}

// DeepCopy returns an independent copy.
func (in *BackendService) DeepCopy() *BackendService {
	if in == nil {
		return nil
	}
	out := *in
	out.Selector = copyMap(in.Selector)
	out.Labels = copyMap(in.Labels)
	return &out
}

// DeepCopy returns an independent copy.
func (in *ForwardingRule) DeepCopy() *ForwardingRule {
	if in == nil {
		return nil
	}
	out := *in
	out.Ports = copyStrings(in.Ports)
	out.Labels = copyMap(in.Labels)
	return &out
}

// DeepCopy returns an independent copy.
func (in *ServiceAttachment) DeepCopy() *ServiceAttachment {
	if in == nil {
		return nil
	}
	out := *in
	out.NATSubnets = copyStrings(in.NATSubnets)
	out.ConsumerAcceptList = copyStrings(in.ConsumerAcceptList)
	out.Labels = copyMap(in.Labels)
	return &out
}

// DeepCopy returns an independent copy.
func (in *ConsumerEndpoint) DeepCopy() *ConsumerEndpoint {
	if in == nil {
		return nil
	}
	out := *in
	out.Labels = copyMap(in.Labels)
	return &out
}

// DeepCopy returns an independent copy.
func (in *DNSRecords) DeepCopy() *DNSRecords {
	if in == nil {
		return nil
	}
	out := *in
	if in.Records != nil {
		out.Records = make([]DNSRecord, len(in.Records))
		for i, r := range in.Records {
			r.Data = copyStrings(r.Data)
			out.Records[i] = r
		}
	}
	out.Labels = copyMap(in.Labels)
	return &out
}

// DeepCopy returns an independent copy.
func (in *FirewallRule) DeepCopy() *FirewallRule {
	if in == nil {
		return nil
	}
	out := *in
	out.Ports = copyStrings(in.Ports)
	out.SourceRanges = copyStrings(in.SourceRanges)
	out.Labels = copyMap(in.Labels)
	return &out
}
